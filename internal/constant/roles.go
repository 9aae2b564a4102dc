package constant

const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"

	// Entity type names used by the store health gate's warn-once set
	EntityConversations = "conversations"
	EntityMessages      = "messages"

	// Number of prior messages handed to the analyzer, chronological
	HistoryWindow = 8
)
