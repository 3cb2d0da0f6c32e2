package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferVersion(t *testing.T) {
	tests := []struct {
		name   string
		banner string
		want   string
	}{
		{"openssh", "SSH-2.0-OpenSSH_8.9p1 Ubuntu-3ubuntu0.3\r\n", "OpenSSH_8.9p1"},
		{"dropbear", "SSH-2.0-dropbear_2020.81\r\n", "dropbear_2020.81"},
		{"truncated ssh", "SSH-2.0", ""},
		{"http server header", "HTTP/1.1 400 Bad Request\r\nServer: nginx/1.18.0\r\nContent-Length: 0\r\n\r\n", "nginx/1.18.0"},
		{"http header case", "HTTP/1.0 200 OK\r\nserver:  lighttpd/1.4.59\r\n\r\n", "lighttpd/1.4.59"},
		{"server only in body", "HTTP/1.1 200 OK\r\n\r\nServer: fake\r\n", ""},
		{"vsftpd", "220 (vsFTPd 3.0.3)\r\n", "vsFTPd 3.0.3"},
		{"postfix", "220 mail.example.com ESMTP Postfix (Ubuntu)\r\n", "mail.example.com ESMTP Postfix"},
		{"unknown", "\xff\xfd\x18", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferVersion([]byte(tt.banner)))
		})
	}
}
