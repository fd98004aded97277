package ports

import "context"

// ITagClassifier is the external labeling collaborator. An empty
// result is not an error here; the demand service decides whether
// creation can proceed.
type ITagClassifier interface {
	GenerateTags(ctx context.Context, text, photo string) ([]string, error)
}
