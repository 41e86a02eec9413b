package starmap

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"starnav.teamgannon.org/internal/logging"
	"starnav.teamgannon.org/internal/transit"
)

// Catalog is the on-disk star list served by the map.
type Catalog struct {
	Name  string         `json:"name"`
	Stars []transit.Star `json:"stars"`
}

// LoadCatalog reads a JSON catalog from path. Stars without an id, with a
// duplicate id or with a non-finite position are skipped and logged.
func LoadCatalog(path string, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open star catalog: %w", err)
	}
	defer logging.SafeCloseWithLogging(f, logger, "star_catalog")

	var raw Catalog
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse star catalog %s: %w", path, err)
	}

	return sanitizeCatalog(&raw, logger), nil
}

func sanitizeCatalog(raw *Catalog, logger *slog.Logger) *Catalog {
	clean := &Catalog{Name: raw.Name, Stars: make([]transit.Star, 0, len(raw.Stars))}
	seen := make(map[string]struct{}, len(raw.Stars))
	skipped := 0

	for i, s := range raw.Stars {
		s.ID = strings.TrimSpace(s.ID)
		switch {
		case s.ID == "":
			logger.Warn("catalog star without id skipped", slog.Int("position", i))
		case !s.Position.IsFinite():
			logger.Warn("catalog star with non-finite position skipped", slog.String("star", s.ID))
		default:
			if _, dup := seen[s.ID]; dup {
				logger.Warn("duplicate catalog star skipped", slog.String("star", s.ID))
				break
			}
			seen[s.ID] = struct{}{}
			if s.Name == "" {
				s.Name = s.ID
			}
			clean.Stars = append(clean.Stars, s)
			continue
		}
		skipped++
	}

	if skipped > 0 {
		logging.LogOperation(logger, "catalog_stars_skipped",
			slog.Int("skipped", skipped),
			slog.Int("kept", len(clean.Stars)))
	}
	return clean
}
