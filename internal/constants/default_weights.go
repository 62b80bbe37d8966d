package constants

import "github.com/Soumik-R/Smart-Resume-Screener/internal/types"

// DefaultWeights 默认维度权重，调用方未提供权重时使用
// 五项之和恒为1.0
func DefaultWeights() types.WeightConfig {
	return types.WeightConfig{
		types.CategorySkills:            0.40,
		types.CategoryExperience:        0.25,
		types.CategoryEducationProjects: 0.15,
		types.CategoryAchievements:      0.10,
		types.CategoryExtracurricular:   0.10,
	}
}
