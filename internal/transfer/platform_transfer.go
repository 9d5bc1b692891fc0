package transfer

type Engagement struct {
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
	Shares   int `json:"shares"`
}

type PublishRequest struct {
	Message  string  `json:"message"`
	ImageURL *string `json:"image_url,omitempty"`
	Hashtags string  `json:"hashtags"`
}

type PublishResponse struct {
	ID string `json:"id"`
}

type PlatformErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}
