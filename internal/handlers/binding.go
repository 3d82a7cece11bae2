package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
)

// maxBodyBytes caps request bodies; the largest legitimate one is an official text of 5000 characters
const maxBodyBytes = 256 << 10

// ErrBodyTooLarge is returned when a request body exceeds maxBodyBytes
var ErrBodyTooLarge = errors.New("request body too large")

// BindNestedOrFlat decodes the JSON body into obj. Clients may wrap the payload
// under key ({"closure": {...}}) or send it flat ({...}); a present key always wins.
// The body is restored afterwards so later readers see it unchanged.
func BindNestedOrFlat(c *gin.Context, key string, obj interface{}) error {
	var body []byte
	if c.Request.Body != nil {
		var err error
		body, err = io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes+1))
		if err != nil {
			return err
		}
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	if len(body) > maxBodyBytes {
		return ErrBodyTooLarge
	}

	var wrapped map[string]json.RawMessage
	if json.Unmarshal(body, &wrapped) == nil {
		if inner, ok := wrapped[key]; ok {
			return json.Unmarshal(inner, obj)
		}
	}
	return json.Unmarshal(body, obj)
}
