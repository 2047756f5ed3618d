package subprocess

import (
	"github.com/eirrgang/scale-ms/codec"
	"github.com/eirrgang/scale-ms/workflow"
)

// Schemas for the subprocess resource types, declared statically.
var (
	InputSchema = workflow.MustNewSchema(InputType,
		workflow.Field{Name: "argv", Type: stringType, Shape: workflow.Shape{1}},
		workflow.Field{Name: "inputs", Type: mappingType, Shape: workflow.Shape{1}, Optional: true},
		workflow.Field{Name: "outputs", Type: mappingType, Shape: workflow.Shape{1}, Optional: true},
		workflow.Field{Name: "stdin", Type: pathType, Shape: workflow.Shape{1}, Optional: true},
		workflow.Field{Name: "environment", Type: mappingType, Shape: workflow.Shape{1}, Optional: true},
		workflow.Field{Name: "resources", Type: mappingType, Shape: workflow.Shape{1}, Optional: true},
	)

	ResultSchema = workflow.MustNewSchema(ResultType,
		workflow.Field{Name: "input", Type: stringType, Shape: workflow.Shape{1}},
		workflow.Field{Name: "exitcode", Type: integerType, Shape: workflow.Shape{1}, Optional: true},
		workflow.Field{Name: "stdout", Type: pathType, Shape: workflow.Shape{1}, Optional: true},
		workflow.Field{Name: "stderr", Type: pathType, Shape: workflow.Shape{1}, Optional: true},
		workflow.Field{Name: "file", Type: mappingType, Shape: workflow.Shape{1}, Optional: true},
	)

	CommandSchema = workflow.MustNewSchema(CommandType,
		workflow.Field{Name: "input", Type: stringType, Shape: workflow.Shape{1}},
		workflow.Field{Name: "result", Type: stringType, Shape: workflow.Shape{1}},
	)
)

// Register installs the subprocess type registrations. Registering into
// the same registry twice fails with ErrAlreadyRegistered.
func Register(registry *codec.Registry) error {
	for _, schema := range []*workflow.Schema{InputSchema, ResultSchema, CommandSchema} {
		if err := registry.Register(schema.Registration()); err != nil {
			return err
		}
	}
	return nil
}

// DeclareTypes records the subprocess schemas in a workflow document.
func DeclareTypes(doc *workflow.Document) error {
	for _, schema := range []*workflow.Schema{InputSchema, ResultSchema, CommandSchema} {
		if err := doc.DeclareType(schema); err != nil {
			return err
		}
	}
	return nil
}
