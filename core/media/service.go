package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"Bt1Cut/cache"
	"Bt1Cut/config"
	"Bt1Cut/logger"
	"Bt1Cut/model"
	"Bt1Cut/repository"
	"Bt1Cut/storage"

	"github.com/google/uuid"
)

// ProbeResult is what the decode engine reports for a source file.
type ProbeResult struct {
	Type      model.MediaType
	Duration  float64   // seconds
	Thumbnail []byte    // JPEG bytes, video sources
	Waveform  []float32 // downsampled peaks, audio sources
}

// Prober asks the external decode engine about a source file. The timeline
// only consumes the numbers; it never touches the media bytes itself.
type Prober interface {
	Probe(ctx context.Context, sourcePath string) (*ProbeResult, error)
}

// Service resolves mediaRefs to asset descriptors and registers new
// sources. Descriptors live in MySQL, hot ones in Redis, derived bytes
// (thumbnails, waveforms) in MinIO.
type Service struct {
	cfg    *config.Config
	repo   repository.AssetRepository
	prober Prober
}

// NewService wires the asset collaborator.
func NewService(cfg *config.Config, repo repository.AssetRepository, prober Prober) *Service {
	return &Service{cfg: cfg, repo: repo, prober: prober}
}

// Resolve returns the descriptor behind a mediaRef, cache first.
func (s *Service) Resolve(ctx context.Context, mediaRef string) (*model.MediaAsset, error) {
	if asset, err := cache.GetAsset(ctx, mediaRef); err == nil && asset != nil {
		return asset, nil
	}

	asset, err := s.repo.GetByID(ctx, mediaRef)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve media ref %s: %w", mediaRef, err)
	}
	if asset == nil {
		return nil, nil
	}

	if err := cache.StoreAsset(ctx, asset); err != nil {
		logger.Warn("asset cache store failed",
			logger.String("assetId", asset.ID),
			logger.ErrorField(err),
		)
	}
	return asset, nil
}

// Register probes a source file and creates its descriptor plus derived
// objects. Re-registering the same source for a user returns the existing
// descriptor.
func (s *Service) Register(ctx context.Context, userID int64, sourcePath string) (*model.MediaAsset, error) {
	if existing, err := s.repo.GetBySourceRef(ctx, userID, sourcePath); err != nil {
		return nil, fmt.Errorf("failed to check for existing asset: %w", err)
	} else if existing != nil {
		return existing, nil
	}

	probe, err := s.prober.Probe(ctx, sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to probe %s: %w", sourcePath, err)
	}

	asset := &model.MediaAsset{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      filepath.Base(sourcePath),
		Type:      probe.Type,
		SourceRef: sourcePath,
		Duration:  probe.Duration,
	}

	switch probe.Type {
	case model.MediaVideo:
		if len(probe.Thumbnail) > 0 {
			key := fmt.Sprintf("thumbs/%s.jpg", asset.ID)
			if err := storage.PutObject(ctx, s.cfg, key, "image/jpeg",
				bytes.NewReader(probe.Thumbnail), int64(len(probe.Thumbnail))); err != nil {
				return nil, err
			}
			asset.ThumbnailKey = key
		}
	case model.MediaAudio:
		if len(probe.Waveform) > 0 {
			data, err := json.Marshal(probe.Waveform)
			if err != nil {
				return nil, fmt.Errorf("failed to encode waveform: %w", err)
			}
			key := fmt.Sprintf("waveforms/%s.json", asset.ID)
			if err := storage.PutObject(ctx, s.cfg, key, "application/json",
				bytes.NewReader(data), int64(len(data))); err != nil {
				return nil, err
			}
			asset.WaveformKey = key
			asset.Waveform = downsample(probe.Waveform, 256)
		}
	}

	if err := s.repo.Create(ctx, asset); err != nil {
		return nil, fmt.Errorf("failed to create asset descriptor: %w", err)
	}
	if err := cache.StoreAsset(ctx, asset); err != nil {
		logger.Warn("asset cache store failed", logger.ErrorField(err))
	}

	logger.Info("media asset registered",
		logger.String("assetId", asset.ID),
		logger.String("source", sourcePath),
		logger.String("type", string(asset.Type)),
		logger.Float64("duration", asset.Duration),
	)
	return asset, nil
}

// Remove deletes the asset descriptor, its cache entry and its derived
// objects. Clips still referencing the asset keep their mediaRef; it just
// stops resolving.
func (s *Service) Remove(ctx context.Context, asset *model.MediaAsset) error {
	for _, key := range []string{asset.ThumbnailKey, asset.WaveformKey} {
		if key == "" {
			continue
		}
		if err := storage.RemoveObject(ctx, s.cfg, key); err != nil {
			logger.Warn("failed to remove derived object",
				logger.String("assetId", asset.ID),
				logger.String("key", key),
				logger.ErrorField(err),
			)
		}
	}
	if err := cache.DropAsset(ctx, asset.ID); err != nil {
		logger.Warn("asset cache drop failed", logger.ErrorField(err))
	}
	if err := s.repo.Delete(ctx, asset.ID); err != nil {
		return fmt.Errorf("failed to delete asset %s: %w", asset.ID, err)
	}
	return nil
}

// downsample keeps at most n peaks for the inline preview copy.
func downsample(samples []float32, n int) []float32 {
	if len(samples) <= n {
		return samples
	}
	out := make([]float32, n)
	step := float64(len(samples)) / float64(n)
	for i := 0; i < n; i++ {
		out[i] = samples[int(float64(i)*step)]
	}
	return out
}

// mediaTypeForExt maps a file extension onto a track media type.
func mediaTypeForExt(path string) (model.MediaType, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".mov", ".mkv", ".webm", ".avi":
		return model.MediaVideo, true
	case ".mp3", ".wav", ".flac", ".aac", ".ogg", ".m4a":
		return model.MediaAudio, true
	default:
		return "", false
	}
}

// StatProber is the stand-in prober used until a decode engine is wired
// in: type from the extension, duration estimated from file size. Good
// enough for watch-folder smoke testing and unit tests.
type StatProber struct {
	// BytesPerSecond approximates the source bitrate for the duration
	// estimate.
	BytesPerSecond int64
}

// NewStatProber creates a prober assuming roughly 1 MB/s sources.
func NewStatProber() *StatProber {
	return &StatProber{BytesPerSecond: 1 << 20}
}

// Probe implements Prober.
func (p *StatProber) Probe(_ context.Context, sourcePath string) (*ProbeResult, error) {
	mediaType, ok := mediaTypeForExt(sourcePath)
	if !ok {
		return nil, fmt.Errorf("unsupported media file: %s", sourcePath)
	}

	info, err := os.Stat(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", sourcePath, err)
	}

	duration := float64(info.Size()) / float64(p.BytesPerSecond)
	if duration <= 0 {
		duration = 1
	}
	return &ProbeResult{Type: mediaType, Duration: duration}, nil
}
