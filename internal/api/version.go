package api

import (
	"encoding/json"

	"github.com/grabtube/grabtube/common"
	"github.com/grabtube/grabtube/internal/server"
)

func (s *Api) versionHandler(_ *server.SyncConn, _ *server.Pool, _ json.RawMessage) (common.UpdateType, any, error) {
	return common.UPDATE_VERSION, &common.VersionResponse{Version: s.version}, nil
}
