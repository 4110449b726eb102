package response

// FieldError names one invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIResponse is the envelope every endpoint writes.
type APIResponse struct {
	Success bool         `json:"success"`
	Data    interface{}  `json:"data,omitempty"`
	Count   *int         `json:"count,omitempty"`
	Token   string       `json:"token,omitempty"`
	Message string       `json:"message,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

func Success(data interface{}) APIResponse {
	return APIResponse{Success: true, Data: data}
}

// SuccessWithMessage keeps data and adds a human-readable note.
func SuccessWithMessage(data interface{}, msg string) APIResponse {
	return APIResponse{Success: true, Data: data, Message: msg}
}

func List(data interface{}, count int) APIResponse {
	return APIResponse{Success: true, Data: data, Count: &count}
}

func Token(token string) APIResponse {
	return APIResponse{Success: true, Token: token}
}

// Empty is the payload of a successful delete: {"success":true,"data":{}}.
func Empty() APIResponse {
	return APIResponse{Success: true, Data: struct{}{}}
}

func Fail(msg string) APIResponse {
	return APIResponse{Success: false, Message: msg}
}

func Invalid(msg string, errs []FieldError) APIResponse {
	return APIResponse{Success: false, Message: msg, Errors: errs}
}
