package dto

// MessageRes is a plain acknowledgement.
type MessageRes struct {
	Message string `json:"message"`
}

// ErrorRes はエラーレスポンスです。Code はクライアントが分岐に使う機械可読な値です。
type ErrorRes struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}
