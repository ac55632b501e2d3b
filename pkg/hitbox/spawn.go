package hitbox

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/decker502/hitsync/pkg/animation"
	"github.com/decker502/hitsync/pkg/config"
	"github.com/decker502/hitsync/pkg/geom"
)

// SpawnSelector 生成点选择器
// 每个实体有若干候选位置，初始化和重置时为每个实体均匀随机选择一个
type SpawnSelector struct {
	ids        []string
	candidates map[string][]geom.Calibrated
	current    map[string]int
	rng        Random
	logger     animation.Logger
}

// NewSpawnSelector 创建选择器并立即选择一次
// rng 为 nil 时使用以当前时间为种子的随机源
func NewSpawnSelector(entries []config.SpawnEntry, rng Random, logger animation.Logger) *SpawnSelector {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &SpawnSelector{
		candidates: make(map[string][]geom.Calibrated, len(entries)),
		current:    make(map[string]int, len(entries)),
		rng:        rng,
		logger:     logger,
	}
	for _, e := range entries {
		if len(e.Candidates) == 0 {
			continue
		}
		s.ids = append(s.ids, e.ID)
		s.candidates[e.ID] = e.Candidates
	}
	s.ResetAll()
	return s
}

// ResetAll 为每个实体重新随机选择
func (s *SpawnSelector) ResetAll() {
	for _, id := range s.ids {
		s.roll(id)
	}
}

// Reselect 为单个实体重新随机选择，返回新下标
func (s *SpawnSelector) Reselect(id string) (int, error) {
	if _, ok := s.candidates[id]; !ok {
		return -1, fmt.Errorf("reselect %q: %w", id, ErrUnknownEntity)
	}
	return s.roll(id), nil
}

// Current 返回实体当前选中的候选位置
func (s *SpawnSelector) Current(id string) (geom.Calibrated, bool) {
	list, ok := s.candidates[id]
	if !ok {
		return geom.Calibrated{}, false
	}
	return list[s.current[id]], true
}

// Index 返回实体当前选中的下标，未知实体返回 -1
func (s *SpawnSelector) Index(id string) int {
	if _, ok := s.candidates[id]; !ok {
		return -1
	}
	return s.current[id]
}

// IDs 返回配置顺序的实体列表
func (s *SpawnSelector) IDs() []string {
	return append([]string(nil), s.ids...)
}

func (s *SpawnSelector) roll(id string) int {
	i := s.rng.Intn(len(s.candidates[id]))
	s.current[id] = i
	s.logger.Printf("[SpawnSelector] Selected spawn location %d for %s", i, id)
	return i
}
