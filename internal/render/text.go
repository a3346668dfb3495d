package render

import (
	"fmt"
	"strings"

	"github.com/Lllllllleong/inspectionrequest/internal/checklist"
	"github.com/Lllllllleong/inspectionrequest/internal/models"
	"golang.org/x/text/encoding/charmap"
)

// checkEncodable rejects text fields the core PDF fonts cannot draw. Both
// strategies write Windows-1252, and fpdf turns every other rune into a dot.
func checkEncodable(reg *checklist.Registry, rc *models.RenderContext) error {
	var bad []string
	for _, f := range reg.Fields() {
		v := rc.Text(f.ID)
		if v == "" {
			continue
		}
		if _, err := charmap.Windows1252.NewEncoder().String(v); err != nil {
			bad = append(bad, f.ID)
		}
	}
	if len(bad) > 0 {
		return newError(ErrInvalidInput, "encode fields", fmt.Errorf("characters outside Windows-1252 in %s", strings.Join(bad, ", ")))
	}
	return nil
}
