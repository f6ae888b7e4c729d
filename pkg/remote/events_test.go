package remote

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	cws "github.com/coder/websocket"

	"github.com/grabtube/grabtube/pkg/gtlib"
)

// memDownloads is a minimal in-memory DownloadStore.
type memDownloads struct {
	mu        sync.Mutex
	downloads map[string]*gtlib.Download
}

func newMemDownloads() *memDownloads {
	return &memDownloads{downloads: make(map[string]*gtlib.Download)}
}

func (m *memDownloads) Download(id string) (*gtlib.Download, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.downloads[id]
	if !ok {
		return nil, gtlib.ErrDownloadNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *memDownloads) Downloads() ([]*gtlib.Download, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*gtlib.Download
	for _, d := range m.downloads {
		out = append(out, d)
	}
	return out, nil
}

func (m *memDownloads) SaveDownload(d *gtlib.Download) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.downloads[d.Id] = d
	return nil
}

func (m *memDownloads) DeleteDownload(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.downloads, id)
	return nil
}

func (m *memDownloads) DeleteFinishedDownloads() (int64, error) { return 0, nil }

func (m *memDownloads) get(id string) *gtlib.Download {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.downloads[id]
}

// eventServer serves /downloads for the resync and pushes the given events
// over /events.
func eventServer(t *testing.T, initial []*gtlib.Download, events []Event) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/downloads", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(initial)
	})
	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		conn, err := cws.Accept(w, r, nil)
		if err != nil {
			t.Errorf("accept: %v", err)
			return
		}
		ctx := r.Context()
		for _, ev := range events {
			data, _ := json.Marshal(ev)
			if err := conn.Write(ctx, cws.MessageText, data); err != nil {
				return
			}
		}
		// Hold the connection until the client goes away.
		conn.Read(ctx)
		conn.Close(cws.StatusNormalClosure, "")
	})
	return httptest.NewServer(mux)
}

func TestListener_SyncsAndAppliesEvents(t *testing.T) {
	initial := []*gtlib.Download{{Id: "dl-1", Status: gtlib.StatusDownloading}}
	events := []Event{
		{Download: &gtlib.Download{Id: "dl-2", Status: gtlib.StatusPending}},
		{DownloadId: "dl-1", Status: gtlib.StatusCompleted, Progress: 100},
	}
	srv := eventServer(t, initial, events)
	defer srv.Close()

	store := newMemDownloads()
	var mu sync.Mutex
	var seen []Event
	ln := NewListener(NewClient(srv.URL, ""), store, log.New(io.Discard, "", 0), func(ev Event) {
		mu.Lock()
		seen = append(seen, ev)
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		ln.Run(ctx)
		close(done)
	}()

	deadline := time.After(5 * time.Second)
	for {
		if d := store.get("dl-1"); d != nil && d.Status == gtlib.StatusCompleted {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for completion event")
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()
	<-done

	if d := store.get("dl-2"); d == nil || d.Status != gtlib.StatusPending {
		t.Errorf("dl-2 = %+v, want cached pending download", store.get("dl-2"))
	}
	if d := store.get("dl-1"); d.CompletedAt.IsZero() {
		t.Error("dl-1 CompletedAt not set on completion event")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 {
		t.Errorf("callback saw %d events, want 2", len(seen))
	}
}

func TestListener_StopsOnCancel(t *testing.T) {
	srv := eventServer(t, nil, nil)
	defer srv.Close()

	ln := NewListener(NewClient(srv.URL, ""), newMemDownloads(), log.New(io.Discard, "", 0), nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		ln.Run(ctx)
		close(done)
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("listener did not stop on context cancel")
	}
}
