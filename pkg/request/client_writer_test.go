package request

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientWriter_StatusCode(t *testing.T) {
	tests := []struct {
		name  string
		write func(w *ClientWriter)
		want  int
	}{
		{
			name:  "DefaultsToOk",
			write: func(w *ClientWriter) {},
			want:  http.StatusOK,
		},
		{
			name: "CapturesWrittenHeader",
			write: func(w *ClientWriter) {
				w.WriteHeader(http.StatusTeapot)
			},
			want: http.StatusTeapot,
		},
		{
			name: "WriteImpliesOk",
			write: func(w *ClientWriter) {
				_, err := w.Write([]byte("hello"))
				require.NoError(t, err)
			},
			want: http.StatusOK,
		},
		{
			name: "FirstHeaderWins",
			write: func(w *ClientWriter) {
				w.WriteHeader(http.StatusNotFound)
				w.WriteHeader(http.StatusInternalServerError)
			},
			want: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewClientWriter(httptest.NewRecorder())
			tt.write(w)
			require.Equal(t, tt.want, w.StatusCode())
		})
	}
}
