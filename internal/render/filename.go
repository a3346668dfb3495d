package render

import (
	"strings"
	"unicode"

	"github.com/Lllllllleong/inspectionrequest/internal/models"
)

// DefaultAttachmentBase names attachments of requests without a serial number.
const DefaultAttachmentBase = "Inspection_Request"

// SanitizeFilename replaces characters Windows rejects in file names with "_" and
// drops control characters.
func SanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case strings.ContainsRune(`<>:"/\|?*`, r):
			b.WriteRune('_')
		case unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DownloadName returns IR_<unit name>_<date>.pdf with spaces in the unit name
// replaced by "_".
func DownloadName(rc *models.RenderContext) string {
	unit := strings.ReplaceAll(rc.Form.UnitName, " ", "_")
	return SanitizeFilename("IR_"+unit+"_"+rc.Date()) + ".pdf"
}

// AttachmentName returns the sanitized serial number with a .pdf suffix.
func AttachmentName(rc *models.RenderContext) string {
	base := strings.TrimSpace(SanitizeFilename(rc.Form.SerialNo))
	if base == "" {
		base = DefaultAttachmentBase
	}
	return base + ".pdf"
}

func document(data []byte, rc *models.RenderContext) *models.RenderedDocument {
	return models.NewRenderedDocument(data, DownloadName(rc), AttachmentName(rc))
}
