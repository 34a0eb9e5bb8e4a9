package interfaces

import (
	"net/http"
)

// ApplicationContext carries a validated request body and request-scoped
// metadata from the router into a controller.
type ApplicationContext[T interface{}] struct {
	Ctx      interface{}
	Body     *T
	Header   http.Header
	Keys     map[string]any
	Param    map[string]any
	DeviceID string
}

func (ac *ApplicationContext[T]) GetHeader(key string) *string {
	if ac.Header == nil {
		return nil
	}
	value := ac.Header.Get(key)
	if value == "" {
		return nil
	}
	return &value
}

func (ac *ApplicationContext[T]) GetContextData(key string) any {
	if ac.Keys == nil {
		return nil
	}
	return ac.Keys[key]
}
