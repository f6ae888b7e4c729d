package api

import (
	"encoding/json"

	"github.com/grabtube/grabtube/common"
	"github.com/grabtube/grabtube/internal/server"
)

// attachHandler subscribes the connection to the daemon's event stream.
// The ack carries a snapshot of the current download list so the client
// starts from a consistent state before updates flow.
func (s *Api) attachHandler(sconn *server.SyncConn, pool *server.Pool, _ json.RawMessage) (common.UpdateType, any, error) {
	downloads, err := s.downloads.Downloads()
	if err != nil {
		return common.UPDATE_ATTACH, nil, err
	}
	pool.Attach(sconn)
	return common.UPDATE_ATTACH, &common.ListResponse{Downloads: downloads}, nil
}
