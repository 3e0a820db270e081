package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/invopop/jsonschema"
	jsv "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/usestring/apiscout-mcp/internal/query"
	"github.com/usestring/apiscout-mcp/pkg/auth"
	"github.com/usestring/apiscout-mcp/pkg/scout"
)

// EndpointsFile is the on-disk layout of the endpoints file. JSON files use
// the same keys.
type EndpointsFile struct {
	Timeout       int                     `json:"timeout,omitempty" yaml:"timeout,omitempty" jsonschema:"minimum=1,description=Request timeout in seconds"`
	TypeDetection *TypeDetection          `json:"type_detection,omitempty" yaml:"type_detection,omitempty"`
	Endpoints     map[string]EndpointSpec `json:"endpoints" yaml:"endpoints"`
}

// TypeDetection overrides the inference settings from the environment.
type TypeDetection struct {
	SampleSize  int  `json:"sample_size,omitempty" yaml:"sample_size,omitempty" jsonschema:"minimum=1,description=Records inspected per array (default 5)"`
	StrictTypes bool `json:"strict_types,omitempty" yaml:"strict_types,omitempty"`
}

// EndpointSpec is one entry under endpoints.
type EndpointSpec struct {
	URL         string            `json:"url" yaml:"url" jsonschema:"minLength=1,description=Absolute http(s) URL"`
	Method      string            `json:"method,omitempty" yaml:"method,omitempty" jsonschema:"pattern=^[A-Za-z]+$,description=HTTP method (default GET)"`
	Headers     map[string]string `json:"headers,omitempty" yaml:"headers,omitempty" jsonschema:"description=Request headers (default Accept: application/json)"`
	Auth        *auth.Spec        `json:"auth,omitempty" yaml:"auth,omitempty"`
	Select      string            `json:"select,omitempty" yaml:"select,omitempty" jsonschema:"description=jq expression applied to the response before analysis"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
}

// Endpoints is a loaded endpoints file.
type Endpoints struct {
	Path          string
	Registry      *scout.Registry
	Timeout       time.Duration // zero when the file does not set one
	TypeDetection *TypeDetection
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// ExpandEnv replaces ${NAME} and ${NAME:-default} with environment values.
// Unset variables without a default expand to "".
func ExpandEnv(data []byte) []byte {
	return envRef.ReplaceAllFunc(data, func(m []byte) []byte {
		sub := envRef.FindSubmatch(m)
		if v, ok := os.LookupEnv(string(sub[1])); ok && v != "" {
			return []byte(v)
		}
		return sub[2]
	})
}

// EndpointsSchema returns the JSON Schema of the endpoints file.
func EndpointsSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		Anonymous:      true,
		DoNotReference: true,
		ExpandedStruct: true,
	}
	return r.Reflect(new(EndpointsFile))
}

var compiledEndpointsSchema = sync.OnceValues(func() (*jsv.Schema, error) {
	raw, err := json.Marshal(EndpointsSchema())
	if err != nil {
		return nil, fmt.Errorf("marshaling endpoints schema: %w", err)
	}
	doc, err := jsv.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("unmarshaling endpoints schema: %w", err)
	}
	c := jsv.NewCompiler()
	if err := c.AddResource("endpoints.schema.json", doc); err != nil {
		return nil, fmt.Errorf("adding endpoints schema: %w", err)
	}
	return c.Compile("endpoints.schema.json")
})

// LoadEndpoints reads a YAML or JSON endpoints file.
func LoadEndpoints(path string) (*Endpoints, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading endpoints file: %w", err)
	}
	eps, err := ParseEndpoints(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	eps.Path = path
	return eps, nil
}

// ParseEndpoints parses endpoints file content. Entries keep file order.
func ParseEndpoints(data []byte) (*Endpoints, error) {
	data = ExpandEnv(data)

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing endpoints file: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, errors.New("endpoints file is empty")
	}

	if err := validateDocument(&root); err != nil {
		return nil, err
	}

	var file EndpointsFile
	if err := root.Decode(&file); err != nil {
		return nil, fmt.Errorf("decoding endpoints file: %w", err)
	}

	out := &Endpoints{
		Registry:      scout.NewRegistry(),
		TypeDetection: file.TypeDetection,
	}
	if file.Timeout > 0 {
		out.Timeout = time.Duration(file.Timeout) * time.Second
	}

	jq := query.NewEngine(0)
	for _, key := range endpointKeys(root.Content[0]) {
		spec := file.Endpoints[key]
		ep, err := spec.endpoint(jq)
		if err != nil {
			return nil, fmt.Errorf("endpoint %q: %w", key, err)
		}
		out.Registry.Add(key, ep)
	}
	return out, nil
}

func validateDocument(root *yaml.Node) error {
	var generic any
	if err := root.Decode(&generic); err != nil {
		return fmt.Errorf("decoding endpoints file: %w", err)
	}
	// Round-trip through JSON so numbers reach the validator as json.Number.
	raw, err := json.Marshal(generic)
	if err != nil {
		return fmt.Errorf("endpoints file is not representable as JSON: %w", err)
	}
	doc, err := jsv.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return err
	}

	sch, err := compiledEndpointsSchema()
	if err != nil {
		return err
	}
	if err := sch.Validate(doc); err != nil {
		var ve *jsv.ValidationError
		if errors.As(err, &ve) {
			return fmt.Errorf("invalid endpoints file:\n%s", ve.Error())
		}
		return fmt.Errorf("invalid endpoints file: %w", err)
	}
	return nil
}

// endpointKeys returns the keys of the endpoints mapping in file order.
func endpointKeys(doc *yaml.Node) []string {
	if doc.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if doc.Content[i].Value != "endpoints" {
			continue
		}
		m := doc.Content[i+1]
		if m.Kind != yaml.MappingNode {
			return nil
		}
		keys := make([]string, 0, len(m.Content)/2)
		for j := 0; j+1 < len(m.Content); j += 2 {
			keys = append(keys, m.Content[j].Value)
		}
		return keys
	}
	return nil
}

func (s EndpointSpec) endpoint(jq *query.Engine) (scout.Endpoint, error) {
	u, err := url.Parse(s.URL)
	if err != nil {
		return scout.Endpoint{}, fmt.Errorf("invalid url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return scout.Endpoint{}, fmt.Errorf("url must be absolute http(s): %s", s.URL)
	}

	desc, err := s.Auth.Descriptor()
	if err != nil {
		return scout.Endpoint{}, err
	}
	if te, ok := desc.(auth.TokenEndpoint); ok && te.Endpoint == "" {
		return scout.Endpoint{}, errors.New("auth: token_endpoint is required")
	}

	if s.Select != "" {
		if err := jq.ValidateExpression(s.Select); err != nil {
			return scout.Endpoint{}, fmt.Errorf("select: %w", err)
		}
	}

	return scout.Endpoint{
		URL:         s.URL,
		Method:      strings.ToUpper(s.Method),
		Headers:     s.Headers,
		Auth:        desc,
		Select:      s.Select,
		Description: s.Description,
	}, nil
}
