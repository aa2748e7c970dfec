// Package openapi serves an OpenAPI 3.0 document built from the router's
// route table, with optional per-route descriptions and reflected schemas.
package openapi

import (
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
)

// Param documents a query parameter.
type Param struct {
	Name        string
	Type        string // string, integer or number
	Description string
	Required    bool
}

// Doc describes one route. Body and Response are sample values whose types
// are reflected into schemas; a nil Response documents an empty body.
type Doc struct {
	Summary  string
	Query    []Param
	Body     interface{}
	Response interface{}
}

// Generator builds the document on demand so routes registered after it are
// included.
type Generator struct {
	title   string
	version string
	prefix  string
	routes  func() []*echo.Route
	docs    map[string]Doc
	schemas *schemaSet
}

// NewGenerator creates a generator over routes (usually e.Routes). Only
// routes under prefix are documented.
func NewGenerator(title, version, prefix string, routes func() []*echo.Route) *Generator {
	return &Generator{
		title:   title,
		version: version,
		prefix:  prefix,
		routes:  routes,
		docs:    make(map[string]Doc),
		schemas: newSchemaSet(),
	}
}

// Describe attaches documentation to the route method + path, where path is
// the router pattern ("/api/v1/patients/:id").
func (g *Generator) Describe(method, path string, d Doc) {
	g.docs[method+" "+path] = d
}

// Override fixes the schema of v's type, for types with custom JSON
// encodings that reflection cannot see.
func (g *Generator) Override(v interface{}, schema map[string]interface{}) {
	g.schemas.overrides[reflect.TypeOf(v)] = schema
}

// openAPIPath converts ":id" segments to "{id}" and returns the parameter
// names in order.
func openAPIPath(path string) (string, []string) {
	segs := strings.Split(path, "/")
	var names []string
	for i, s := range segs {
		if strings.HasPrefix(s, ":") {
			names = append(names, s[1:])
			segs[i] = "{" + s[1:] + "}"
		}
	}
	return strings.Join(segs, "/"), names
}

// operationID derives an id from the handler name, e.g.
// ".../bloodtest.(*Handler).CreateBloodTest-fm" -> "CreateBloodTest".
func operationID(r *echo.Route) string {
	name := strings.TrimSuffix(r.Name, "-fm")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	if name != "" && name[0] >= 'A' && name[0] <= 'Z' {
		return name
	}
	id := strings.ToLower(r.Method)
	for _, s := range strings.Split(r.Path, "/") {
		s = strings.Trim(s, ":")
		if s != "" {
			id += "_" + strings.ReplaceAll(s, "-", "_")
		}
	}
	return id
}

// tag groups operations by the first path segment after the prefix.
func (g *Generator) tag(path string) string {
	rest := strings.TrimPrefix(strings.TrimPrefix(path, g.prefix), "/")
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	return rest
}

func successStatus(method string) string {
	switch method {
	case http.MethodPost:
		return "201"
	case http.MethodDelete:
		return "204"
	}
	return "200"
}

func errorResponse(description string) map[string]interface{} {
	return map[string]interface{}{
		"description": description,
		"content": map[string]interface{}{
			"application/json": map[string]interface{}{
				"schema": map[string]string{"$ref": "#/components/schemas/Error"},
			},
		},
	}
}

func (g *Generator) operation(r *echo.Route, params []string) map[string]interface{} {
	d := g.docs[r.Method+" "+r.Path]

	var parameters []map[string]interface{}
	for _, p := range params {
		parameters = append(parameters, map[string]interface{}{
			"name": p, "in": "path", "required": true,
			"schema": map[string]string{"type": "string"},
		})
	}
	for _, q := range d.Query {
		typ := q.Type
		if typ == "" {
			typ = "string"
		}
		parameters = append(parameters, map[string]interface{}{
			"name": q.Name, "in": "query", "required": q.Required,
			"description": q.Description,
			"schema":      map[string]string{"type": typ},
		})
	}

	success := map[string]interface{}{"description": "Success"}
	if d.Response != nil {
		success["content"] = map[string]interface{}{
			"application/json": map[string]interface{}{"schema": g.schemas.of(d.Response)},
		}
	}
	responses := map[string]interface{}{
		successStatus(r.Method): success,
		"500":                   errorResponse("Internal error"),
	}
	if len(params) > 0 {
		responses["404"] = errorResponse("Not found")
	}
	if d.Body != nil || len(d.Query) > 0 || len(params) > 0 {
		responses["400"] = errorResponse("Invalid request")
	}

	op := map[string]interface{}{
		"operationId": operationID(r),
		"tags":        []string{g.tag(r.Path)},
		"responses":   responses,
	}
	if d.Summary != "" {
		op["summary"] = d.Summary
	}
	if len(parameters) > 0 {
		op["parameters"] = parameters
	}
	if d.Body != nil {
		op["requestBody"] = map[string]interface{}{
			"required": true,
			"content": map[string]interface{}{
				"application/json": map[string]interface{}{"schema": g.schemas.of(d.Body)},
			},
		}
	}
	return op
}

// GenerateSpec produces the OpenAPI 3.0 document as a map.
func (g *Generator) GenerateSpec() map[string]interface{} {
	routes := g.routes()
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		return routes[i].Method < routes[j].Method
	})

	paths := make(map[string]interface{})
	for _, r := range routes {
		if !strings.HasPrefix(r.Path, g.prefix+"/") {
			continue
		}
		path, params := openAPIPath(r.Path)
		item, _ := paths[path].(map[string]interface{})
		if item == nil {
			item = make(map[string]interface{})
			paths[path] = item
		}
		item[strings.ToLower(r.Method)] = g.operation(r, params)
	}

	schemas := g.schemas.components()
	schemas["Error"] = map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{"detail": map[string]string{"type": "string"}},
		"required":   []string{"detail"},
	}

	return map[string]interface{}{
		"openapi": "3.0.3",
		"info": map[string]interface{}{
			"title":   g.title,
			"version": g.version,
		},
		"servers":    []map[string]string{{"url": g.prefix}},
		"paths":      paths,
		"components": map[string]interface{}{"schemas": schemas},
	}
}

const swaggerUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>API documentation</title>
  <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({url: "openapi.json", dom_id: "#swagger-ui", deepLinking: true});
  </script>
</body>
</html>`

// RegisterRoutes serves the document and a Swagger UI page under g.
func (gen *Generator) RegisterRoutes(g *echo.Group) {
	g.GET("/openapi.json", func(c echo.Context) error {
		return c.JSON(http.StatusOK, gen.GenerateSpec())
	})
	g.GET("/docs", func(c echo.Context) error {
		return c.HTML(http.StatusOK, swaggerUIHTML)
	})
}
