package respond

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	ContentTypeMsgPack = "application/msgpack"
	ContentTypeJSON    = "application/json"
)

var ErrEmptyBody = errors.New("empty request body")

// wantsJSON reports whether the request asked for JSON explicitly; msgpack is
// the default.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), ContentTypeJSON)
}

func JSON(w http.ResponseWriter, r *http.Request, code int, data interface{}) {
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

func MsgPack(w http.ResponseWriter, r *http.Request, code int, data interface{}) {
	w.Header().Set("Content-Type", ContentTypeMsgPack)
	w.WriteHeader(code)
	msgpack.NewEncoder(w).Encode(data)
}

// Data writes data in the encoding the client negotiated.
func Data(w http.ResponseWriter, r *http.Request, code int, data interface{}) {
	if wantsJSON(r) {
		JSON(w, r, code, data)
		return
	}
	MsgPack(w, r, code, data)
}

func Error(w http.ResponseWriter, r *http.Request, code int, message string) {
	Data(w, r, code, map[string]string{"error": message})
}

// Decode reads the body as JSON when Content-Type says so and as msgpack
// otherwise.
func Decode(r *http.Request, v interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return ErrEmptyBody
	}

	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == ContentTypeJSON {
		return json.NewDecoder(r.Body).Decode(v)
	}

	err := msgpack.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return ErrEmptyBody
	}
	return err
}
