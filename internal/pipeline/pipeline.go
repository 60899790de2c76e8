// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"fmt"

	"credit-risk-workers/internal/models"
)

// Assessment is the result of one pipeline run.
type Assessment struct {
	Verdict    models.Verdict
	ClassLabel int
	Vector     models.FeatureVector
}

// Pipeline runs assemble -> predict -> interpret. All of its collaborators are
// read-only so one Pipeline is shared by every job goroutine.
type Pipeline struct {
	assembler  *Assembler
	classifier Classifier
}

func New(registry *Registry, classifier Classifier) *Pipeline {
	return &Pipeline{
		assembler:  NewAssembler(registry),
		classifier: classifier,
	}
}

func (p *Pipeline) Assess(ctx context.Context, rec models.ApplicantRecord) (*Assessment, error) {
	vec, err := p.assembler.Assemble(rec)
	if err != nil {
		return nil, err
	}

	label, err := p.classifier.Predict(ctx, vec)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}

	verdict, err := Interpret(label)
	if err != nil {
		return nil, err
	}

	return &Assessment{
		Verdict:    verdict,
		ClassLabel: label,
		Vector:     vec,
	}, nil
}
