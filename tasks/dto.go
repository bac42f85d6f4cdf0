package tasks

// CreateTaskRequest is the payload for creating a task. Any owner field the
// caller supplies is simply not part of this shape: the owner is always taken
// from the authenticated identity.
type CreateTaskRequest struct {
	Title       string `json:"title" example:"Buy milk"`
	Description string `json:"description,omitempty" example:"2 liters, whole"`
	Status      string `json:"status,omitempty" example:"pending"`
}

// UpdateTaskRequest is the payload for a partial update. Pointer fields
// distinguish "omitted" (nil, leave untouched) from "supplied" (applied after
// validation).
type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// TaskListData is the data payload of the list endpoint.
type TaskListData struct {
	Tasks []Task `json:"tasks"`
	Count int    `json:"count"`
}
