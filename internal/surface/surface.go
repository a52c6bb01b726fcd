package surface

import (
	"github.com/Aman-CERP/confscope/internal/locate"
	"github.com/Aman-CERP/confscope/internal/scope"
)

// Input is everything a scanner needs for one project.
type Input struct {
	Resolver    *locate.Resolver
	Gate        *scope.Gate
	ProjectPath string
}

func (in Input) item(value any, s scope.ConfigScope, path string) scope.Item[any] {
	return scope.NewItem(value, s, path, in.Gate)
}
