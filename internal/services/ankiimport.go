package services

import (
	"archive/zip"
	"context"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yungbote/lingobridge-backend/internal/data/repos"
	"github.com/yungbote/lingobridge-backend/internal/domain"
	"github.com/yungbote/lingobridge-backend/internal/domain/cards"
	pkgerrors "github.com/yungbote/lingobridge-backend/internal/pkg/errors"
	"github.com/yungbote/lingobridge-backend/internal/pkg/logger"
	"github.com/yungbote/lingobridge-backend/internal/srs"
)

const (
	// ankiFieldSeparator divides the flds column of an Anki note.
	ankiFieldSeparator = "\x1f"

	importConcurrency = 4
	importBatchSize   = 500
)

// AnkiImportSummary reports what one deck upload produced.
type AnkiImportSummary struct {
	Imported int `json:"imported_count"`
	Skipped  int `json:"skipped_count"`
}

// AnkiImportService ingests .apkg deck packages. Only note text survives the
// import; Anki's own scheduling state is discarded and every card starts new.
type AnkiImportService interface {
	ImportDeck(ctx context.Context, userID uuid.UUID, apkgPath string) (*AnkiImportSummary, error)
}

type ankiImportService struct {
	log      *logger.Logger
	cardRepo repos.CardRepo
	srsCfg   srs.Config
}

func NewAnkiImportService(log *logger.Logger, cardRepo repos.CardRepo, srsCfg srs.Config) AnkiImportService {
	return &ankiImportService{
		log:      log.With("service", "AnkiImportService"),
		cardRepo: cardRepo,
		srsCfg:   srsCfg,
	}
}

type ankiNote struct {
	ID   int64
	Flds string
	Tags string
}

type importCandidate struct {
	front string
	back  string
	tags  string
}

func (as *ankiImportService) ImportDeck(ctx context.Context, userID uuid.UUID, apkgPath string) (*AnkiImportSummary, error) {
	collectionPath, cleanup, err := extractCollection(apkgPath)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	notes, err := readAnkiNotes(collectionPath)
	if err != nil {
		return nil, err
	}
	as.log.Info("Read notes from Anki package", "user_id", userID, "notes", len(notes))

	candidates, err := convertNotes(ctx, notes)
	if err != nil {
		return nil, err
	}

	summary := &AnkiImportSummary{}
	fresh, err := as.dedupe(ctx, userID, candidates)
	if err != nil {
		return nil, err
	}
	summary.Skipped = len(notes) - len(fresh)

	now := time.Now()
	batch := make([]*domain.Card, 0, importBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := as.cardRepo.Create(ctx, nil, batch); err != nil {
			return fmt.Errorf("insert imported cards: %w", err)
		}
		summary.Imported += len(batch)
		batch = batch[:0]
		return nil
	}
	for _, c := range fresh {
		batch = append(batch, cards.New(userID, c.front, c.back, c.tags, cards.SourceAnkiImport, as.srsCfg, now))
		if len(batch) == importBatchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	as.log.Info("Finished Anki import",
		"user_id", userID,
		"imported", summary.Imported,
		"skipped", summary.Skipped,
	)
	return summary, nil
}

// extractCollection unpacks the collection database from the .apkg zip into a
// scratch directory. Packages exported by newer Anki versions carry both a
// legacy collection.anki2 stub and the real collection.anki21, so the newer
// member wins when both exist.
func extractCollection(apkgPath string) (string, func(), error) {
	reader, err := zip.OpenReader(apkgPath)
	if err != nil {
		return "", nil, fmt.Errorf("not a zip archive: %w", pkgerrors.ErrInvalidArgument)
	}
	defer reader.Close()

	var member *zip.File
	for _, f := range reader.File {
		if strings.HasSuffix(f.Name, ".anki21") {
			member = f
			break
		}
		if member == nil && strings.HasSuffix(f.Name, ".anki2") {
			member = f
		}
	}
	if member == nil {
		return "", nil, fmt.Errorf("no collection database in package: %w", pkgerrors.ErrInvalidArgument)
	}

	dir, err := os.MkdirTemp("", "anki-import-")
	if err != nil {
		return "", nil, fmt.Errorf("create scratch dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(dir) }

	src, err := member.Open()
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("open collection member: %w", err)
	}
	defer src.Close()

	dstPath := filepath.Join(dir, "collection.anki2")
	dst, err := os.Create(dstPath)
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("create collection copy: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		cleanup()
		return "", nil, fmt.Errorf("extract collection: %w", err)
	}
	if err := dst.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("flush collection copy: %w", err)
	}
	return dstPath, cleanup, nil
}

func readAnkiNotes(collectionPath string) ([]ankiNote, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro", collectionPath)
	adb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open collection database: %w: %w", pkgerrors.ErrInvalidArgument, err)
	}
	sqlDB, err := adb.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap collection handle: %w", err)
	}
	defer sqlDB.Close()

	var notes []ankiNote
	if err := adb.Raw("SELECT id, flds, tags FROM notes").Scan(&notes).Error; err != nil {
		return nil, fmt.Errorf("read notes table: %w: %w", pkgerrors.ErrInvalidArgument, err)
	}
	return notes, nil
}

// convertNotes turns raw note rows into card candidates, in parallel. Notes
// without two non-empty text fields are dropped; the candidate slice keeps
// note order.
func convertNotes(ctx context.Context, notes []ankiNote) ([]*importCandidate, error) {
	out := make([]*importCandidate, len(notes))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(importConcurrency)
	for i, note := range notes {
		g.Go(func() error {
			fields := strings.Split(note.Flds, ankiFieldSeparator)
			if len(fields) < 2 {
				return nil
			}
			front := stripHTML(fields[0])
			back := stripHTML(fields[1])
			if front == "" || back == "" {
				return nil
			}
			out[i] = &importCandidate{
				front: front,
				back:  back,
				tags:  joinTags(strings.Fields(note.Tags)),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	kept := make([]*importCandidate, 0, len(notes))
	for _, c := range out {
		if c != nil {
			kept = append(kept, c)
		}
	}
	return kept, nil
}

// dedupe drops candidates whose front the learner already owns, and repeats
// within the upload itself.
func (as *ankiImportService) dedupe(ctx context.Context, userID uuid.UUID, candidates []*importCandidate) ([]*importCandidate, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	fronts := make([]string, 0, len(candidates))
	for _, c := range candidates {
		fronts = append(fronts, c.front)
	}
	existing, err := as.cardRepo.ExistingFronts(ctx, nil, userID, fronts)
	if err != nil {
		return nil, fmt.Errorf("check existing fronts: %w", err)
	}

	seen := make(map[string]struct{}, len(candidates))
	fresh := make([]*importCandidate, 0, len(candidates))
	for _, c := range candidates {
		if _, dup := existing[c.front]; dup {
			continue
		}
		if _, dup := seen[c.front]; dup {
			continue
		}
		seen[c.front] = struct{}{}
		fresh = append(fresh, c)
	}
	return fresh, nil
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// stripHTML flattens Anki's rich-text fields to plain text: tags removed,
// entities decoded, whitespace collapsed.
func stripHTML(s string) string {
	if strings.ContainsAny(s, "<&") {
		s = htmlTagPattern.ReplaceAllString(s, " ")
		s = html.UnescapeString(s)
	}
	return strings.Join(strings.Fields(s), " ")
}
