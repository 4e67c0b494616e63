// Package notify delivers attendance notices to guardians over WhatsApp.
package notify

import (
	"context"
	"fmt"

	"github.com/absensi-sd/absensi-api/internal/models"
)

// Gateway sends one attendance notice. Delivery is fire-and-forget beyond
// the call's own response; no receipt is awaited.
type Gateway interface {
	SendAttendanceNotice(ctx context.Context, notice models.AttendanceNotice) error
}

// Message renders the guardian-facing WhatsApp text for a notice.
func Message(notice models.AttendanceNotice) string {
	return fmt.Sprintf(
		"Assalamu'alaikum, kami informasikan bahwa ananda %s (kelas %s) tercatat *%s* pada tanggal %s. Terima kasih.",
		notice.Name, notice.Grade, notice.Status, notice.Date,
	)
}
