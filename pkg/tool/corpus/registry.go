package corpus

import (
	"github.com/m-mizutani/burrow/pkg/model"
	"github.com/m-mizutani/burrow/pkg/tool"
	"github.com/m-mizutani/burrow/pkg/usecase/rag"
)

// NewRegistry builds the tool registry for one answering session. Tools whose
// scope gate is closed publish no spec and stay invisible to the model.
func NewRegistry(uc *rag.UseCase, rc *model.RetrievalContext) *tool.Registry {
	return tool.New(
		NewSearch(uc, rc),
		NewExpand(uc, rc),
		NewIndex(uc, rc),
	)
}
