package profile

import (
	"fmt"

	"match-agent/prompts"
)

// Aspect is one extraction dimension of the profile document. Each aspect
// is extracted independently so a single bad model reply never poisons the
// whole document.
type Aspect struct {
	Key     string
	Label   string
	Scope   string
	Example string
}

// Aspects enumerates the profile dimensions, keyed the way they are stored
// in the aspects JSONB column.
var Aspects = []Aspect{
	{
		Key:     "education",
		Label:   "教育背景",
		Scope:   "学历、毕业院校、专业、是否在读",
		Example: `{"degree": "硕士", "school": "复旦大学", "major": "金融", "status": "已毕业"}`,
	},
	{
		Key:     "career",
		Label:   "工作职业",
		Scope:   "职业、行业、工作节奏、收入水平、职业稳定性",
		Example: `{"job": "产品经理", "industry": "互联网", "pace": "偶尔加班", "income": "30-50万"}`,
	},
	{
		Key:     "family",
		Label:   "家庭背景",
		Scope:   "是否独生、父母情况、家庭氛围、家乡",
		Example: `{"background": "独生子女", "parents": "父母健在已退休", "hometown": "杭州"}`,
	},
	{
		Key:     "assets",
		Label:   "资产状况",
		Scope:   "房产、车辆、储蓄等用户主动提及的资产信息",
		Example: `{"house": "市区有房有贷款", "car": "有车"}`,
	},
	{
		Key:     "lifestyle",
		Label:   "生活方式",
		Scope:   "烟酒习惯、作息、运动、饮食偏好",
		Example: `{"smoking": "不吸烟", "drinking": "偶尔", "schedule": "早睡早起", "sports": ["羽毛球"]}`,
	},
	{
		Key:     "personality",
		Label:   "性格特质",
		Scope:   "MBTI、性格标签、社交倾向",
		Example: `{"mbti": "INFJ", "tags": ["温和", "慢热"], "social": "小圈子社交"}`,
	},
	{
		Key:     "interests",
		Label:   "兴趣爱好",
		Scope:   "爱好标签、周末活动、文娱偏好",
		Example: `{"tags": ["徒步", "摄影"], "weekend": "喜欢郊游"}`,
	},
	{
		Key:     "values",
		Label:   "价值观念",
		Scope:   "金钱观、事业家庭平衡、人生规划",
		Example: `{"money": "量入为出", "balance": "家庭优先"}`,
	},
	{
		Key:     "love_style",
		Label:   "恋爱风格",
		Scope:   "依恋类型、粘人程度、沟通方式、过往感情观",
		Example: `{"attachment": "安全型", "clinginess": "适度联系", "communication": "有事直说"}`,
	},
	{
		Key:     "risk",
		Label:   "风险特质",
		Scope:   "情绪稳定性、潜在风险因素、自述的雷点或底线",
		Example: `{"emotional_stability": "情绪平稳", "risks": ["长期异地"], "dealbreakers": ["酗酒"]}`,
	},
	{
		Key:     "partner_preference",
		Label:   "择偶偏好",
		Scope:   "理想型、硬性要求、雷点",
		Example: `{"ideal": "成熟稳重", "dealbreakers": ["吸烟"]}`,
	},
}

// SystemPrompt renders the extraction prompt for this aspect.
func (a Aspect) SystemPrompt() string {
	return fmt.Sprintf(prompts.AspectExtractSystem(), a.Label, a.Scope, a.Example)
}
