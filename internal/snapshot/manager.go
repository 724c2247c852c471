// Package snapshot captures and manages saves: point-in-time records of
// which base objects each generated level aggregated for an application.
package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/jmourtada/strata/internal/config"
	"github.com/jmourtada/strata/internal/logging"
	"github.com/jmourtada/strata/internal/models"
	"github.com/jmourtada/strata/internal/store"
)

// saveTimestampFormat is the sortable timestamp stamped on save records.
const saveTimestampFormat = "2006-01-02 15:04:05"

// Manager captures snapshots of generated levels into save records.
type Manager struct {
	store store.GraphStore
	cfg   *config.Config
	log   *slog.Logger
	audit *logging.AuditLogger

	generated *regexp.Regexp

	// now is swappable for tests.
	now func() time.Time
}

// NewManager creates a snapshot manager over the given store. audit may
// be nil.
func NewManager(st store.GraphStore, cfg *config.Config, log *slog.Logger, audit *logging.AuditLogger) *Manager {
	pattern := fmt.Sprintf(".*##(%s.*)", regexp.QuoteMeta(cfg.Graph.GeneratedLevelPrefix))
	return &Manager{
		store:     st,
		cfg:       cfg,
		log:       log,
		audit:     audit,
		generated: regexp.MustCompile(pattern),
		now:       time.Now,
	}
}

// SaveLevels captures a snapshot of application's generated levels under
// saveName and returns the save along with the total number of member
// objects captured across all levels. Every generated level yields
// exactly one operation, even when it currently aggregates no objects.
// The save and all its operations are persisted as one unit.
func (m *Manager) SaveLevels(ctx context.Context, application, saveName string) (models.Save, int, error) {
	levels, err := m.store.QueryNodes(ctx, map[string]interface{}{
		"kind":        models.KindLevel,
		"application": application,
	})
	if err != nil {
		return models.Save{}, 0, &models.QueryError{Op: "query levels", Err: err}
	}

	save := models.Save{
		Name:        saveName,
		Application: application,
		Timestamp:   m.now().Format(saveTimestampFormat),
	}
	saveNode := models.SaveToNode(save)
	save.ID = saveNode.ID

	captured := 0
	operations := 0
	capture := func(s store.GraphStore) error {
		if _, err := s.AddNode(ctx, saveNode); err != nil {
			return &models.QueryError{Op: "create save", Err: err}
		}
		for _, n := range levels {
			level, err := models.LevelFromNode(n)
			if err != nil {
				m.log.Warn("dropping malformed level during snapshot", "node", n.ID, "error", err)
				continue
			}
			if !m.generated.MatchString(level.FullName) {
				m.log.Log(ctx, logging.LevelTrace, "skipping user-authored level", "level", level.FullName)
				continue
			}
			grouped, err := m.groupedObjects(ctx, s, level.ID)
			if err != nil {
				return err
			}
			opNode := models.OperationToNode(models.Operation{
				LevelName:      level.Name,
				GroupedObjects: grouped,
			})
			if _, err := s.AddNode(ctx, opNode); err != nil {
				return &models.QueryError{Op: "create operation", Err: err}
			}
			edge := store.Edge{Source: opNode.ID, Target: saveNode.ID, Kind: m.cfg.Graph.OperationToSaveEdge}
			if err := s.AddEdge(ctx, edge); err != nil {
				return &models.QueryError{Op: "link operation to save", Err: err}
			}
			captured += len(grouped)
			operations++
		}
		return nil
	}

	if tx, ok := m.store.(store.Transactor); ok {
		err = tx.Transact(ctx, capture)
	} else {
		err = capture(m.store)
		if err != nil {
			// Best-effort rollback of the partial save.
			if _, delErr := removeSaveCascade(ctx, m.store, m.cfg, saveNode.ID); delErr != nil {
				m.log.Error("could not clean up partial save", "save", saveNode.ID, "error", delErr)
			}
		}
	}
	if err != nil {
		return models.Save{}, 0, err
	}

	m.audit.Log(map[string]any{
		"event":       "save_levels",
		"save":        save.ID,
		"name":        saveName,
		"application": application,
		"operations":  operations,
		"objects":     captured,
	})
	m.log.Info("snapshot captured", "save", save.ID, "name", saveName, "operations", operations, "objects", captured)

	return save, captured, nil
}

// groupedObjects collects the full names of the base objects the level
// aggregates right now. Aggregated nodes of other kinds, or missing the
// full-name property, are skipped.
func (m *Manager) groupedObjects(ctx context.Context, s store.GraphStore, levelID string) ([]string, error) {
	edges, err := s.GetEdges(ctx, levelID, store.DirectionOutbound, m.cfg.Graph.AggregatesEdge)
	if err != nil {
		return nil, &models.QueryError{Op: "collect aggregated objects", Err: err}
	}

	names := make([]string, 0, len(edges))
	for _, e := range edges {
		node, err := s.GetNode(ctx, e.Target)
		if err != nil {
			return nil, &models.QueryError{Op: "resolve aggregated object", Err: err}
		}
		if node == nil || node.Kind != m.cfg.Graph.ObjectKind {
			continue
		}
		fullName, ok := node.Props[m.cfg.Graph.ObjectFullNameProp].(string)
		if !ok || fullName == "" {
			m.log.Warn("aggregated object has no full name", "node", node.ID)
			continue
		}
		names = append(names, fullName)
	}
	return names, nil
}
