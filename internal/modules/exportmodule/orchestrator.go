package exportmodule

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/openreel/openreel/internal/apperrors"
	"github.com/openreel/openreel/internal/config"
	"github.com/openreel/openreel/internal/database"
	"github.com/openreel/openreel/internal/events"
	"github.com/openreel/openreel/internal/mediaengine"
	"github.com/openreel/openreel/internal/modules/overlaymodule"
	"github.com/openreel/openreel/internal/modules/processingmodule"
	"github.com/openreel/openreel/internal/modules/timelinemodule"
)

// Request describes one export
type Request struct {
	SessionID   string `json:"sessionId"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Result summarizes a finished export
type Result struct {
	RecordID   string `json:"recordId"`
	FileSize   int64  `json:"fileSize"`
	Compressed bool   `json:"compressed"`
	Stripped   bool   `json:"stripped"`
	StepCount  int    `json:"stepCount"`
}

// Orchestrator drives the export flow: size-driven compression of the
// final blob, snapshot serialization with bounded payloads, poster
// thumbnail, upload, and the persisted export record.
type Orchestrator struct {
	engine   mediaengine.Engine
	uploader *Uploader
	logger   hclog.Logger
	db       *gorm.DB
}

// NewOrchestrator wires an orchestrator
func NewOrchestrator(engine mediaengine.Engine, uploader *Uploader, db *gorm.DB, logger hclog.Logger) *Orchestrator {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Orchestrator{engine: engine, uploader: uploader, db: db, logger: logger}
}

// Export runs the full flow for a session
func (o *Orchestrator) Export(ctx context.Context, req Request) (*Result, error) {
	if req.Title == "" {
		return nil, apperrors.NewValidationError("Title is required", "title")
	}

	timeline, err := timelinemodule.GetManager().GetStore(req.SessionID)
	if err != nil {
		return nil, apperrors.NewNotFoundError("session", req.SessionID)
	}
	processor, err := processingmodule.GetManager().ForSession(req.SessionID)
	if err != nil {
		return nil, err
	}
	blob, _ := processor.Current()
	if len(blob) == 0 {
		return nil, apperrors.NewValidationError("Nothing to export - process a video first", "session")
	}

	events.PublishGlobal(events.NewEvent(events.EventExportStarted, "exportmodule", "",
		map[string]interface{}{"sessionId": req.SessionID, "title": req.Title}))

	// The engine is installed by the processing module at startup;
	// resolve late so module init order does not matter.
	if o.engine == nil {
		if def := mediaengine.Default(); def != nil {
			o.engine = def
		} else {
			return nil, fmt.Errorf("media engine not initialized")
		}
	}

	cfg := config.Get().Export
	finalBlob, compressed := o.compressIfOversized(ctx, blob, cfg)

	var textOverlays []overlaymodule.Overlay
	if overlays, err := overlaymodule.GetManager().ForSession(req.SessionID); err == nil {
		textOverlays = overlays.Text.Store().List()
	}
	snapshot := BuildSnapshot(timeline, textOverlays)
	timelineData, stripped, err := MarshalBounded(snapshot, cfg.MaxPayloadBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize timeline snapshot: %w", err)
	}

	steps := processor.StrippedSteps()
	stepsJSON, err := json.Marshal(steps)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize step log: %w", err)
	}

	var thumbnail []byte
	if cfg.EnableThumbnails {
		thumbnail, err = Poster(ctx, o.engine, finalBlob, snapshot.TrimStart, cfg.ThumbnailQuality)
		if err != nil {
			// Poster is decoration; the export goes out without it.
			o.logger.Warn("poster thumbnail skipped", "error", err)
			thumbnail = nil
		}
	}

	record := database.ExportRecord{
		ID:          uuid.New().String(),
		SessionID:   req.SessionID,
		Title:       req.Title,
		Description: req.Description,
		FileSize:    int64(len(finalBlob)),
		Compressed:  compressed,
		StepCount:   len(steps),
		Status:      "uploading",
	}
	o.saveRecord(&record)

	err = o.uploader.Upload(ctx, UploadPayload{
		Video:        finalBlob,
		Filename:     req.Title + ".mp4",
		Title:        req.Title,
		Description:  req.Description,
		Steps:        stepsJSON,
		TimelineData: timelineData,
		Thumbnail:    thumbnail,
	})
	if err != nil {
		record.Status = "failed"
		record.ErrorMessage = err.Error()
		o.saveRecord(&record)
		events.PublishGlobal(events.NewEvent(events.EventExportFailed, "exportmodule", "",
			map[string]interface{}{"sessionId": req.SessionID, "error": err.Error()}))
		return nil, err
	}

	record.Status = "completed"
	o.saveRecord(&record)

	// Persist the snapshot alongside the session for reload.
	if err := timelinemodule.GetManager().SaveSnapshot(req.SessionID, timelineData, snapshot.Duration); err != nil {
		o.logger.Warn("failed to persist session snapshot", "error", err)
	}

	events.PublishGlobal(events.NewEvent(events.EventExportCompleted, "exportmodule", "",
		map[string]interface{}{"sessionId": req.SessionID, "recordId": record.ID}))

	return &Result{
		RecordID:   record.ID,
		FileSize:   record.FileSize,
		Compressed: compressed,
		Stripped:   stripped,
		StepCount:  len(steps),
	}, nil
}

// compressIfOversized applies the two-tier compression ladder. A blob
// under the threshold passes through. Compression failing, or not
// getting the blob under the threshold, never blocks the export: the
// best blob so far goes out.
func (o *Orchestrator) compressIfOversized(ctx context.Context, blob []byte, cfg config.ExportConfig) ([]byte, bool) {
	if cfg.MaxUploadBytes <= 0 || int64(len(blob)) <= cfg.MaxUploadBytes {
		return blob, false
	}

	primary, err := o.engine.Compress(ctx, blob, cfg.PrimaryBitrate, cfg.PrimaryResolution)
	if err != nil {
		o.logger.Warn("primary compression failed, exporting original", "error", err)
		return blob, false
	}
	events.PublishGlobal(events.NewEvent(events.EventExportCompressed, "exportmodule", "",
		map[string]interface{}{"tier": "primary", "bytes": len(primary)}))
	if int64(len(primary)) <= cfg.MaxUploadBytes {
		return primary, true
	}

	fallback, err := o.engine.Compress(ctx, blob, cfg.FallbackBitrate, cfg.FallbackResolution)
	if err != nil {
		o.logger.Warn("fallback compression failed, exporting primary tier", "error", err)
		return primary, true
	}
	events.PublishGlobal(events.NewEvent(events.EventExportCompressed, "exportmodule", "",
		map[string]interface{}{"tier": "fallback", "bytes": len(fallback)}))
	return fallback, true
}

func (o *Orchestrator) saveRecord(record *database.ExportRecord) {
	if o.db == nil {
		return
	}
	if err := o.db.Save(record).Error; err != nil {
		o.logger.Warn("failed to persist export record", "record_id", record.ID, "error", err)
	}
}

// ListRecords returns the export history for a session, newest first
func ListRecords(db *gorm.DB, sessionID string) ([]database.ExportRecord, error) {
	var records []database.ExportRecord
	query := db.Order("created_at desc")
	if sessionID != "" {
		query = query.Where("session_id = ?", sessionID)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, apperrors.NewDatabaseError("list export records", err)
	}
	return records, nil
}
