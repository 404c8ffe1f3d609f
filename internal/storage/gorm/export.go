package gormstorage

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/hokarena/reward/internal/model"
	"github.com/hokarena/reward/internal/model/convert"
	"github.com/hokarena/reward/pkg/core"
)

// LoadRecord reads one stored episode with all its rows.
func LoadRecord(db *gorm.DB, episodeID uint) (core.EpisodeRecord, error) {
	var record core.EpisodeRecord

	var ep model.Episode
	if err := db.Preload("Agents").Where("id = ?", episodeID).First(&ep).Error; err != nil {
		return record, fmt.Errorf("error getting episode %d: %w", episodeID, err)
	}
	record.Episode = convert.EpisodeToCore(ep)

	var frames []model.FrameReward
	err := db.Where("episode_id = ?", episodeID).
		Order("frame_no ASC").
		Order("agent_index ASC").
		Find(&frames).Error
	if err != nil {
		return record, fmt.Errorf("error getting frame rewards: %w", err)
	}
	record.Frames = make([]core.FrameReward, 0, len(frames))
	for _, f := range frames {
		record.Frames = append(record.Frames, convert.FrameRewardToCore(f))
		if f.FrameNo > record.EndFrame {
			record.EndFrame = f.FrameNo
		}
	}

	var summaries []model.EpisodeSummary
	err = db.Where("episode_id = ?", episodeID).
		Order("agent_index ASC").
		Find(&summaries).Error
	if err != nil {
		return record, fmt.Errorf("error getting summaries: %w", err)
	}
	record.Summaries = make([]core.EpisodeSummary, 0, len(summaries))
	for _, s := range summaries {
		record.Summaries = append(record.Summaries, convert.EpisodeSummaryToCore(s))
		if s.EndFrame > record.EndFrame {
			record.EndFrame = s.EndFrame
		}
	}

	return record, nil
}
