package config

import (
	"bytes"
	"os"
	"strings"
	"text/template"
)

// ExpandEnv expands environment variables in YAML content using Go templates
// with {{.VAR_NAME}} syntax. Plain $ is left alone so regex patterns and
// passwords survive untouched.
//
// Examples:
//   - client_id: {{.TWITCH_CLIENT_ID}} → value of TWITCH_CLIENT_ID
//   - gql_url: {{.GQL_SCHEME}}://{{.GQL_HOST}}/gql → both variables expanded
//
// Missing variables expand to the empty string; validation catches required
// fields left empty. On template parse or execution errors the original
// bytes pass through so plain YAML still reaches the parser.
func ExpandEnv(data []byte) []byte {
	tmpl, err := template.New("config").Option("missingkey=zero").Parse(string(data))
	if err != nil {
		return data
	}

	envMap := make(map[string]string)
	for _, env := range os.Environ() {
		if idx := strings.IndexByte(env, '='); idx > 0 {
			envMap[env[:idx]] = env[idx+1:]
		}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, envMap); err != nil {
		return data
	}
	return buf.Bytes()
}
