package dto

type NotificationQuery struct {
	UnreadOnly bool `form:"unread_only"`
	Page       int  `form:"page" validate:"omitempty,min=1"`
	PageSize   int  `form:"page_size" validate:"omitempty,min=1,max=100"`
}

type NotificationListResponse struct {
	*PaginatedResponse
	UnreadCount int64 `json:"unread_count"`
}
