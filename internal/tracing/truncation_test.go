package tracing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskPII(t *testing.T) {
	t.Run("空值", func(t *testing.T) {
		assert.Equal(t, "", MaskPII(""))
	})

	t.Run("短值整体掩码", func(t *testing.T) {
		assert.Equal(t, "*", MaskPII("王"))
		assert.Equal(t, "张*", MaskPII("张三"))
		assert.Equal(t, "李*四", MaskPII("李小四"))
	})

	t.Run("长值保留首尾各两位", func(t *testing.T) {
		masked := MaskPII("zhang.wei@example.com")
		assert.True(t, strings.HasPrefix(masked, "zh"))
		assert.True(t, strings.HasSuffix(masked, "om"))
		assert.NotContains(t, masked, "example")
		assert.Len(t, []rune(masked), len([]rune("zhang.wei@example.com")))
	})

	t.Run("电话号码不可还原", func(t *testing.T) {
		assert.Equal(t, "13*******00", MaskPII("13800138000"))
	})
}

func TestSafeAttributeValue(t *testing.T) {
	t.Run("敏感键名触发掩码", func(t *testing.T) {
		assert.Equal(t, "张*", SafeAttributeValue("candidate.name", "张三", DefaultMaxLength))
		masked := SafeAttributeValue("candidate.email", "zhang.wei@example.com", DefaultMaxLength)
		assert.NotContains(t, masked, "example")
		assert.Equal(t, "13*******00", SafeAttributeValue("contact_phone", "13800138000", DefaultMaxLength))
	})

	t.Run("普通键名只做截断", func(t *testing.T) {
		long := strings.Repeat("技能描述", 100)
		safe := SafeAttributeValue("section.content", long, DefaultMaxLength)
		assert.LessOrEqual(t, len([]rune(safe)), DefaultMaxLength)
		assert.Contains(t, safe, "...")
	})

	t.Run("短值原样返回", func(t *testing.T) {
		assert.Equal(t, "Go, Python", SafeAttributeValue("skills", "Go, Python", DefaultMaxLength))
	})
}

func TestTruncateString(t *testing.T) {
	t.Run("未超长不变", func(t *testing.T) {
		assert.Equal(t, "短文本", TruncateString("短文本", 10))
	})

	t.Run("超长保留首尾", func(t *testing.T) {
		s := strings.Repeat("a", 50) + strings.Repeat("z", 50)
		out := TruncateString(s, 21)
		assert.Len(t, []rune(out), 21)
		assert.True(t, strings.HasPrefix(out, "aaa"))
		assert.True(t, strings.HasSuffix(out, "zzz"))
		assert.Contains(t, out, "...")
	})

	t.Run("按字符而非字节截断", func(t *testing.T) {
		s := strings.Repeat("简", 200)
		out := TruncateString(s, 21)
		assert.Len(t, []rune(out), 21)
	})
}

func TestSafeResumeContent(t *testing.T) {
	long := strings.Repeat("工作经历描述内容", 100)
	out := SafeResumeContent(long)
	assert.LessOrEqual(t, len([]rune(out)), MaxResumeLength)
	assert.Contains(t, out, "...")
}
