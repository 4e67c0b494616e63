package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/absensi-sd/absensi-api/internal/models"
)

// ConsoleGateway logs notices instead of delivering them. Used in
// development and whenever no gateway token is configured.
type ConsoleGateway struct {
	logger *zap.Logger
}

var _ Gateway = (*ConsoleGateway)(nil)

// NewConsoleGateway constructs the console gateway.
func NewConsoleGateway(logger *zap.Logger) *ConsoleGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleGateway{logger: logger}
}

func (g *ConsoleGateway) SendAttendanceNotice(_ context.Context, notice models.AttendanceNotice) error {
	g.logger.Sugar().Infow("attendance notice (console)",
		"phone", notice.Phone,
		"name", notice.Name,
		"grade", notice.Grade,
		"date", notice.Date,
		"status", notice.Status,
	)
	return nil
}
