// internal/blockchain/solbc/errors.go
package solbc

import (
	"fmt"
	"strings"

	"github.com/rovshanmuradov/token-minter/internal/blockchain"
)

// Error представляет ошибку RPC с дополнительным контекстом
type Error struct {
	Err     error
	NodeURL string
	Method  string
}

// Error реализует интерфейс error
func (e *Error) Error() string {
	return fmt.Sprintf("RPC error [%s] at %s: %v", e.Method, e.NodeURL, e.Err)
}

// Unwrap возвращает оригинальную ошибку
func (e *Error) Unwrap() error {
	return e.Err
}

// blockhashMarkers are the forms a node uses to report an unknown blockhash
// in preflight and in send errors.
var blockhashMarkers = []string{"blockhashnotfound", "blockhash not found"}

// classify wraps err so that callers can match it with errors.Is.
func (c *Client) classify(method string, err error) error {
	msg := strings.ToLower(err.Error())
	for _, marker := range blockhashMarkers {
		if strings.Contains(msg, marker) {
			err = fmt.Errorf("%w: %v", blockchain.ErrBlockhashNotFound, err)
			break
		}
	}
	return &Error{Err: err, NodeURL: c.url, Method: method}
}
