package mcpsrv

import (
	"github.com/usestring/apiscout-mcp/internal/cache"
	"github.com/usestring/apiscout-mcp/internal/config"
	"github.com/usestring/apiscout-mcp/pkg/auth"
	"github.com/usestring/apiscout-mcp/pkg/scout"
)

// Deps contains all dependencies available to custom tools.
// This gives custom tools access to the same infrastructure as builtin tools.
type Deps struct {
	Analyzer *scout.Analyzer
	Registry *scout.Registry
	Resolver *auth.Resolver
	Results  *cache.ResultCache
	Config   *config.Config
}
