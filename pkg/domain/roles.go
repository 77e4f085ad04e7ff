package domain

// Role defines the sender of a conversation message.
type Role string

const (
	// RoleUser indicates a message from the user.
	RoleUser Role = "user"
	// RoleAssistant indicates a message from the model.
	RoleAssistant Role = "assistant"
	// RoleTool indicates the result of a tool call, echoed back to the model.
	RoleTool Role = "tool"
	// RoleSystem indicates a system prompt.
	RoleSystem Role = "system"
)
