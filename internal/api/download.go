package api

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/grabtube/grabtube/common"
	"github.com/grabtube/grabtube/internal/server"
	"github.com/grabtube/grabtube/pkg/gtlib"
)

// downloadHandler submits an ad hoc job to the download server.
func (s *Api) downloadHandler(_ *server.SyncConn, _ *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.DownloadParams
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_DOWNLOAD, nil, err
	}
	if m.Url == "" {
		return common.UPDATE_DOWNLOAD, nil, errors.New("url is required")
	}
	req := &gtlib.SubmitRequest{
		URL:       m.Url,
		Quality:   m.Quality,
		Format:    m.Format,
		Folder:    m.Folder,
		AutoStart: m.AutoStart,
	}
	if req.Quality == "" {
		req.Quality = gtlib.DefaultQuality
	}
	if req.Format == "" {
		// Ad hoc downloads take whatever container the extractor picks.
		req.Format = "any"
	}
	id, err := s.remote.Submit(context.Background(), req)
	if err != nil {
		return common.UPDATE_DOWNLOAD, nil, err
	}
	s.log.Printf("submitted download %s for %s\n", id, m.Url)
	return common.UPDATE_DOWNLOAD, &common.DownloadResponse{DownloadId: id}, nil
}

func (s *Api) listHandler(_ *server.SyncConn, _ *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.ListParams
	if len(body) > 0 {
		if err := json.Unmarshal(body, &m); err != nil {
			return common.UPDATE_LIST, nil, err
		}
	}
	downloads, err := s.downloads.Downloads()
	if err != nil {
		return common.UPDATE_LIST, nil, err
	}
	if m.ActiveOnly {
		active := downloads[:0]
		for _, d := range downloads {
			if d.Status.IsActive() {
				active = append(active, d)
			}
		}
		downloads = active
	}
	return common.UPDATE_LIST, &common.ListResponse{Downloads: downloads}, nil
}

func (s *Api) cancelHandler(_ *server.SyncConn, _ *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.InputDownloadId
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_CANCEL, nil, err
	}
	if m.DownloadId == "" {
		return common.UPDATE_CANCEL, nil, errors.New("download_id is required")
	}
	d, err := s.downloads.Download(m.DownloadId)
	if err != nil {
		return common.UPDATE_CANCEL, nil, err
	}
	if !d.Status.CanCancel() {
		return common.UPDATE_CANCEL, nil, errors.New("download already finished")
	}
	if err := s.remote.Cancel(context.Background(), m.DownloadId); err != nil {
		return common.UPDATE_CANCEL, nil, err
	}
	return common.UPDATE_CANCEL, &common.DownloadResponse{DownloadId: m.DownloadId}, nil
}

// clearCompletedHandler removes finished jobs on the server and from the
// local cache.
func (s *Api) clearCompletedHandler(_ *server.SyncConn, _ *server.Pool, _ json.RawMessage) (common.UpdateType, any, error) {
	if _, err := s.remote.ClearCompleted(context.Background()); err != nil {
		return common.UPDATE_CLEAR_COMPLETED, nil, err
	}
	removed, err := s.downloads.DeleteFinishedDownloads()
	if err != nil {
		return common.UPDATE_CLEAR_COMPLETED, nil, err
	}
	return common.UPDATE_CLEAR_COMPLETED, &common.ClearCompletedResponse{Removed: removed}, nil
}
