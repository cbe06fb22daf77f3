// Package registry holds the static response-style and persona catalogs.
// Entries are process-wide constants; lookups never mutate anything.
package registry

// Entry describes one selectable style or persona.
type Entry struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Instruction  string `json:"-"`
	Confirmation string `json:"-"`
}

// Option is the listing view exposed to clients.
type Option struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

const (
	DefaultStyle   = "normal"
	DefaultPersona = "professional"
)

var styleOrder = []string{"concise", "normal", "detailed"}

var styles = map[string]Entry{
	"concise": {
		Name:         "짧게",
		Description:  "2문장 이하로 간결하고 핵심만 요약",
		Instruction:  "2문장 이하로 간결하게 핵심만 요약해서 답변하세요. 절대로 2문장을 넘기지 마세요. 가능하면 1문장으로 답변하되, 꼭 필요한 경우에만 2문장을 사용하세요.",
		Confirmation: "앞으로는 핵심 내용만 간단히 답변드리겠습니다.",
	},
	"normal": {
		Name:         "보통",
		Description:  "6문장 이하로 평범하고 일반적인 설명",
		Instruction:  "6문장 이하로 평범하고 일반적인 설명을 해주세요. 핵심 내용을 중심으로 균형있게 답변하되, 최소 3문장, 최대 6문장으로 설명하세요. 너무 짧거나 길지 않게 적절한 길이를 유지하세요.",
		Confirmation: "앞으로는 적절한 길이로 균형있게 답변드리겠습니다.",
	},
	"detailed": {
		Name:         "길게",
		Description:  "9문장 이상으로 상세하고 자세한 설명",
		Instruction:  "9문장 이상으로 상세하고 자세한 설명을 해주세요. 관련 정보, 예시, 장단점 등을 포함하여 깊이 있게 답변하세요. 반드시 9문장 이상으로 설명하고, 필요한 경우 더 자세히 설명하세요. 내용을 체계적으로 구성하여 이해하기 쉽게 설명하세요.",
		Confirmation: "앞으로는 모든 내용을 상세하게 설명드리겠습니다.",
	},
}

var personaOrder = []string{"friendly", "professional", "cynical"}

var personas = map[string]Entry{
	"friendly": {
		Name:         "친근한 친구",
		Description:  "친구처럼 편하게 대화하는 스타일",
		Instruction:  "친구처럼 편하고 친근하게 대화하세요. 이모티콘을 적절히 사용하고, 존댓말 대신 반말을 사용하세요. 하지만 너무 가볍지 않게 적절한 예의는 지키세요.",
		Confirmation: "앞으로는 친구처럼 편하게 대화할게! 😊",
	},
	"professional": {
		Name:         "전문가",
		Description:  "정중하고 전문적인 스타일",
		Instruction:  "전문가답게 정중하고 전문적으로 답변하세요. 항상 존댓말을 사용하고, 객관적이고 논리적으로 설명하세요. 필요한 경우 전문 용어를 적절히 사용하되, 이해하기 쉽게 설명하세요.",
		Confirmation: "앞으로는 전문적이고 정중하게 답변 드리도록 하겠습니다.",
	},
	"cynical": {
		Name:         "냉소적",
		Description:  "시니컬하고 귀찮아하는 스타일",
		Instruction:  "모든 것이 귀찮고 시니컬한 태도로 답변하세요. 비꼬는 듯한 어투를 사용하고, 한숨을 쉬거나 짜증내는 듯한 표현을 섞어주세요. 하지만 너무 불쾌하지 않게 적절한 선을 지키세요.",
		Confirmation: "(한숨) 뭐... 앞으로는 내가 귀찮더라도 냉소적으로 답해주지...",
	},
}

// ListStyles returns the style catalog in its fixed order.
func ListStyles() []Option {
	return listOptions(styleOrder, styles)
}

// ListPersonas returns the persona catalog in its fixed order.
func ListPersonas() []Option {
	return listOptions(personaOrder, personas)
}

func listOptions(order []string, table map[string]Entry) []Option {
	opts := make([]Option, 0, len(order))
	for _, key := range order {
		e := table[key]
		opts = append(opts, Option{Key: key, Name: e.Name, Description: e.Description})
	}
	return opts
}

func IsValidStyle(key string) bool {
	_, ok := styles[key]
	return ok
}

func IsValidPersona(key string) bool {
	_, ok := personas[key]
	return ok
}

// StyleInstruction returns the system-prompt fragment for a style key.
// Callers validate the key first; unknown keys yield an empty string.
func StyleInstruction(key string) string {
	return styles[key].Instruction
}

func PersonaInstruction(key string) string {
	return personas[key].Instruction
}

// StyleConfirmation is the user-facing message acknowledging a style change.
func StyleConfirmation(key string) string {
	return styles[key].Confirmation
}

func PersonaConfirmation(key string) string {
	return personas[key].Confirmation
}
