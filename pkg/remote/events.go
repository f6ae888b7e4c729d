package remote

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	cws "github.com/coder/websocket"

	"github.com/grabtube/grabtube/pkg/gtlib"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// Event is one download state update pushed by the server. Download is set
// on creation events and carries the full job; otherwise only the changed
// fields arrive.
type Event struct {
	DownloadId string               `json:"download_id"`
	Status     gtlib.DownloadStatus `json:"status"`
	Progress   float64              `json:"progress"`
	Speed      string               `json:"speed,omitempty"`
	Eta        string               `json:"eta,omitempty"`
	Error      string               `json:"error,omitempty"`
	Download   *gtlib.Download      `json:"download,omitempty"`
}

// Listener keeps the local download cache in sync with the server's event
// stream and fans each event out to an optional callback.
type Listener struct {
	client  *Client
	store   gtlib.DownloadStore
	log     *log.Logger
	onEvent func(Event)
}

func NewListener(c *Client, store gtlib.DownloadStore, l *log.Logger, onEvent func(Event)) *Listener {
	return &Listener{client: c, store: store, log: l, onEvent: onEvent}
}

// Run blocks until ctx is cancelled, reconnecting with capped exponential
// backoff whenever the stream drops. Each (re)connect resyncs the full
// download list before applying events, so no update is lost to a gap.
func (ln *Listener) Run(ctx context.Context) {
	backoff := initialBackoff
	for {
		connected, err := ln.listen(ctx)
		if ctx.Err() != nil {
			return
		}
		if connected {
			backoff = initialBackoff
		}
		ln.log.Printf("remote: event stream: %v; reconnecting in %s\n", err, backoff)
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < maxBackoff {
			backoff *= 2
		}
	}
}

// listen runs one websocket session. connected reports whether the dial
// succeeded, so the caller can reset its backoff.
func (ln *Listener) listen(ctx context.Context) (connected bool, err error) {
	wsURL := "ws" + strings.TrimPrefix(ln.client.baseURL, "http") + "/events"
	opts := &cws.DialOptions{}
	if ln.client.token != "" {
		opts.HTTPHeader = http.Header{
			"Authorization": []string{"Bearer " + ln.client.token},
		}
	}
	conn, _, err := cws.Dial(ctx, wsURL, opts)
	if err != nil {
		return false, err
	}
	defer conn.Close(cws.StatusNormalClosure, "")

	ln.resync(ctx)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return true, err
		}
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			ln.log.Printf("remote: bad event payload: %v\n", err)
			continue
		}
		ln.apply(ev)
	}
}

// resync replaces the cached download list with the server's current state.
func (ln *Listener) resync(ctx context.Context) {
	downloads, err := ln.client.Downloads(ctx)
	if err != nil {
		ln.log.Printf("remote: resync: %v\n", err)
		return
	}
	for _, d := range downloads {
		if err := ln.store.SaveDownload(d); err != nil {
			ln.log.Printf("remote: cache download %s: %v\n", d.Id, err)
		}
	}
}

func (ln *Listener) apply(ev Event) {
	switch {
	case ev.Download != nil:
		if err := ln.store.SaveDownload(ev.Download); err != nil {
			ln.log.Printf("remote: cache download %s: %v\n", ev.Download.Id, err)
		}
	case ev.DownloadId != "":
		d, err := ln.store.Download(ev.DownloadId)
		if err != nil {
			// Update for a job we never saw; fetch it whole next resync.
			break
		}
		if ev.Status != "" {
			d.Status = ev.Status
		}
		if ev.Error != "" {
			d.ErrorMessage = ev.Error
		}
		if ev.Status == gtlib.StatusCompleted && d.CompletedAt.IsZero() {
			d.CompletedAt = time.Now()
		}
		if err := ln.store.SaveDownload(d); err != nil {
			ln.log.Printf("remote: cache download %s: %v\n", d.Id, err)
		}
	}
	if ln.onEvent != nil {
		ln.onEvent(ev)
	}
}
