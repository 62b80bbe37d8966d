package scorer

import (
	"errors"
	"fmt"
	"math"

	"github.com/Soumik-R/Smart-Resume-Screener/internal/constants"
	"github.com/Soumik-R/Smart-Resume-Screener/internal/types"
)

// ErrWeightConfig 权重配置非法
// 权重校验必须在任何远端评审调用之前完成
var ErrWeightConfig = errors.New("权重配置非法")

// ValidateWeights 校验权重配置：五个维度齐全、各自在 [0,1]、总和为 1.0（±0.01）
func ValidateWeights(weights types.WeightConfig) error {
	if len(weights) == 0 {
		return fmt.Errorf("%w: 权重为空", ErrWeightConfig)
	}

	sum := 0.0
	for _, cat := range types.AllScoreCategories {
		w, ok := weights[cat]
		if !ok {
			return fmt.Errorf("%w: 缺少维度 %q 的权重", ErrWeightConfig, cat)
		}
		if w < 0 || w > 1 {
			return fmt.Errorf("%w: 维度 %q 权重 %.4f 越界（允许 0-1）", ErrWeightConfig, cat, w)
		}
		sum += w
	}

	for cat := range weights {
		known := false
		for _, k := range types.AllScoreCategories {
			if cat == k {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("%w: 未知维度 %q", ErrWeightConfig, cat)
		}
	}

	if math.Abs(sum-1.0) > constants.WeightSumTolerance {
		return fmt.Errorf("%w: 权重总和 %.4f，要求 1.0（±%.2f）", ErrWeightConfig, sum, constants.WeightSumTolerance)
	}
	return nil
}

// ResolveWeights 规范化权重输入：空配置回退默认权重，否则校验后原样返回
func ResolveWeights(weights types.WeightConfig) (types.WeightConfig, error) {
	if len(weights) == 0 {
		return constants.DefaultWeights(), nil
	}
	if err := ValidateWeights(weights); err != nil {
		return nil, err
	}
	return weights, nil
}

// WeightedOverall 按权重计算总分
// 不变量：总分总是本地计算，绝不采信评审服务自带的总分
func WeightedOverall(scores map[types.ScoreCategory]float64, weights types.WeightConfig) float64 {
	sum := 0.0
	for cat, w := range weights {
		sum += w * scores[cat]
	}
	// 两位小数足以稳定排序，同时避免浮点尾差
	return math.Round(sum*100) / 100
}
