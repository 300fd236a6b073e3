package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/vk/ednavoyage/internal/config"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Encode renders m as an HCL document. Loading the result yields a model
// equal to m.
func Encode(m *config.Model) ([]byte, error) {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	grid := root.AppendNewBlock("grid", nil).Body()
	grid.SetAttributeValue("size", cty.NumberIntVal(int64(m.Grid.Size)))
	root.AppendNewline()

	holds := make([]string, len(m.Sequence.Holds))
	for i, d := range m.Sequence.Holds {
		holds[i] = d.String()
	}
	holdsVal, err := gocty.ToCtyValue(holds, cty.List(cty.String))
	if err != nil {
		return nil, fmt.Errorf("failed to encode sequence holds: %w", err)
	}
	seq := root.AppendNewBlock("sequence", nil).Body()
	seq.SetAttributeValue("holds", holdsVal)
	seq.SetAttributeValue("level", cty.StringVal(m.Sequence.Level))

	for _, name := range m.Levels() {
		indices, err := gocty.ToCtyValue(m.Aggregations[name], cty.List(cty.Number))
		if err != nil {
			return nil, fmt.Errorf("failed to encode aggregation %q: %w", name, err)
		}
		root.AppendNewline()
		agg := root.AppendNewBlock("aggregation", []string{name}).Body()
		agg.SetAttributeValue("indices", indices)
	}
	root.AppendNewline()

	storage := root.AppendNewBlock("storage", nil).Body()
	storage.SetAttributeValue("driver", cty.StringVal(m.Storage.Driver))
	if m.Storage.Path != "" {
		storage.SetAttributeValue("path", cty.StringVal(m.Storage.Path))
	}
	root.AppendNewline()

	server := root.AppendNewBlock("server", nil).Body()
	server.SetAttributeValue("listen", cty.StringVal(m.Server.Listen))

	return f.Bytes(), nil
}
