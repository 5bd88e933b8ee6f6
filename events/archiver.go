package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/sakshamaitools/clash-point-forge/models"
	"github.com/sakshamaitools/clash-point-forge/storage"
)

// SnapshotSource produces the final standings of a tournament.
type SnapshotSource interface {
	Snapshot(ctx context.Context, tournamentID uuid.UUID) (*models.StandingsSnapshot, error)
}

// Archiver uploads a standings snapshot to object storage when a tournament completes.
type Archiver struct {
	bus      *Bus
	source   SnapshotSource
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewArchiver(bus *Bus, source SnapshotSource, uploader storage.FileUploader, logger *slog.Logger) *Archiver {
	return &Archiver{bus: bus, source: source, uploader: uploader, logger: logger}
}

// ArchiveKey is the object key of a tournament's standings snapshot.
func ArchiveKey(t models.Tournament) string {
	name := slug.Make(t.Title)
	if name == "" {
		name = "tournament"
	}
	return fmt.Sprintf("standings/%s-%s.json", name, t.ID)
}

func (a *Archiver) Run(ctx context.Context) error {
	ch, err := a.bus.Subscribe(ctx, TopicTournamentCompleted)
	if err != nil {
		return fmt.Errorf("archiver: subscribe: %w", err)
	}

	go func() {
		for msg := range ch {
			evt, err := Decode[TournamentCompleted](msg)
			if err != nil {
				a.logger.Warn("archiver: undecodable event", slog.Any("error", err))
				msg.Ack()
				continue
			}
			if _, err := a.Archive(ctx, evt.TournamentID); err != nil {
				a.logger.Error("archiver: failed to archive standings",
					slog.String("tournament_id", evt.TournamentID.String()),
					slog.Any("error", err))
			}
			msg.Ack()
		}
	}()
	return nil
}

func (a *Archiver) Archive(ctx context.Context, tournamentID uuid.UUID) (*storage.UploadResult, error) {
	snapshot, err := a.source.Snapshot(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load standings snapshot: %w", err)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode standings snapshot: %w", err)
	}

	result, err := a.uploader.Upload(ctx, ArchiveKey(snapshot.Tournament), "application/json", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	a.logger.Info("standings archived",
		slog.String("tournament_id", tournamentID.String()),
		slog.String("key", result.Key),
		slog.String("location", result.Location))
	return result, nil
}
