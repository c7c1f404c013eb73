package drawer

import (
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"sort"
	"text/template"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/askiada/procdash/pkg/pipeline/measure"
)

// DOTDrawer renders the pipeline graph in the graphviz DOT language.
type DOTDrawer struct {
	graph graph.Graph[string, string]
	open  func() (io.WriteCloser, error)
}

// NewDOTDrawer creates a drawer writing the graph to fileName.
func NewDOTDrawer(fileName string) *DOTDrawer {
	return NewDOTWriterDrawer(func() (io.WriteCloser, error) {
		file, err := os.Create(fileName)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to create file %s", fileName)
		}

		return file, nil
	})
}

// NewDOTWriterDrawer creates a drawer writing the graph to the writer returned by open.
func NewDOTWriterDrawer(open func() (io.WriteCloser, error)) *DOTDrawer {
	return &DOTDrawer{
		graph: graph.New(graph.StringHash, graph.Directed()),
		open:  open,
	}
}

// AddStep adds a step to the pipeline graph.
func (d *DOTDrawer) AddStep(name string) error {
	err := d.graph.AddVertex(name, graph.VertexAttribute("shape", "box"))
	if err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
		return errors.Wrap(err, "unable to add vertex")
	}

	return nil
}

// AddLink adds a link between parent and children steps.
func (d *DOTDrawer) AddLink(parentName, childrenName string) error {
	err := d.graph.AddEdge(parentName, childrenName)
	if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
		return errors.Wrapf(err, "unable to add edge from %s to %s", parentName, childrenName)
	}

	return nil
}

// Draw writes the pipeline graph.
func (d *DOTDrawer) Draw() (err error) {
	wrt, err := d.open()
	if err != nil {
		return err
	}

	defer func() {
		if cerr := wrt.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "unable to close dot graph")
		}
	}()

	err = dot(d.graph, wrt, graphAttribute("rankdir", "LR"))
	if err != nil {
		return errors.Wrap(err, "unable to write dot graph")
	}

	return nil
}

// SetTotalTime labels the step with the time elapsed since startTime.
func (d *DOTDrawer) SetTotalTime(stepName string, startTime time.Time) error {
	_, properties, err := d.graph.VertexWithProperties(stepName)
	if err != nil {
		return errors.Wrap(err, "unable to get end vertex properties")
	}

	properties.Attributes["xlabel"] = time.Since(startTime).Round(time.Microsecond).String()

	return nil
}

const maxRGB = 240

// waitColors maps every distinct mean wait on a link to a colour going from blue (shortest) to red (longest).
func waitColors(steps []measure.StepStats) (map[time.Duration]string, error) {
	res := make(map[time.Duration]string)
	waits := []time.Duration{}

	for _, step := range steps {
		for _, link := range step.Inputs {
			wait := link.MeanWait(step.Workers)
			if _, ok := res[wait]; ok || wait == 0 {
				continue
			}
			res[wait] = ""
			waits = append(waits, wait)
		}
	}

	if len(waits) == 0 {
		return res, nil
	}

	minValue, maxValue := slices.Min(waits), slices.Max(waits)

	for wait := range res {
		fraction := 1.0
		if maxValue > minValue {
			fraction = float64(wait-minValue) / float64(maxValue-minValue)
		}

		red := math.Round(maxRGB * fraction)

		col, err := colors.RGB(uint8(red), 0, uint8(maxRGB-red)) //nolint
		if err != nil {
			return nil, errors.Wrap(err, "unable to get colour")
		}

		res[wait] = col.ToHEX().String()
	}

	return res, nil
}

// AddMeasure labels every step with its item count and mean work, and every link with its mean wait.
func (d *DOTDrawer) AddMeasure(steps []measure.StepStats) error {
	linkColors, err := waitColors(steps)
	if err != nil {
		return err
	}

	for _, step := range steps {
		err := d.labelStep(step, linkColors)
		if err != nil {
			return errors.Wrapf(err, "unable to label step %s", step.Name)
		}
	}

	return nil
}

func (d *DOTDrawer) labelStep(step measure.StepStats, linkColors map[time.Duration]string) error {
	_, properties, err := d.graph.VertexWithProperties(step.Name)
	if errors.Is(err, graph.ErrVertexNotFound) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "unable to get vertex properties")
	}

	var label string
	if work := step.MeanWork(); work != 0 {
		label = fmt.Sprintf("%d x %s", step.Items, work)
	}
	if step.Elapsed > 0 {
		label += ", end: " + step.Elapsed.Round(time.Microsecond).String()
	}
	if label != "" {
		properties.Attributes["xlabel"] = label
	}

	for input, link := range step.Inputs {
		wait := link.MeanWait(step.Workers)
		if wait == 0 {
			continue
		}

		err := d.graph.UpdateEdge(input, step.Name,
			graph.EdgeAttribute("label", wait.String()),
			graph.EdgeAttribute("fontcolor", "blue"),
			graph.EdgeAttribute("color", linkColors[wait]),
		)
		if err != nil && !errors.Is(err, graph.ErrEdgeNotFound) {
			return errors.Wrap(err, "unable to update edge")
		}
	}

	return nil
}

//nolint:lll //this is a template
const dotTemplate = `strict {{.GraphType}} {
{{range $k, $v := .Attributes}}	{{$k}}="{{$v}}";
{{end}}{{range $s := .Statements}}	"{{.Source}}" {{if .Target}}{{$.EdgeOperator}} "{{.Target}}" [ {{range $k, $v := .EdgeAttributes}}{{$k}}="{{$v}}", {{end}}weight={{.EdgeWeight}} ]{{else}}[ {{range $k, $v := .HTMLAttributes}}{{$k}}={{$v}}, {{end}}{{range $k, $v := .SourceAttributes}}{{$k}}="{{$v}}", {{end}}weight={{.SourceWeight}} ]{{end}};
{{end}}}
`

type description struct {
	GraphType    string
	Attributes   map[string]string
	EdgeOperator string
	Statements   []statement
}

type statement struct {
	Source           interface{}
	Target           interface{}
	SourceAttributes map[string]string
	HTMLAttributes   map[string]string
	EdgeAttributes   map[string]string
	SourceWeight     int
	EdgeWeight       int
}

func dot[K comparable, T any](g graph.Graph[K, T], wrt io.Writer, options ...func(*description)) error {
	desc, err := generateDOT(g, options...)
	if err != nil {
		return errors.Wrap(err, "failed to generate DOT description")
	}

	return renderDOT(wrt, desc)
}

// graphAttribute sets an attribute of the whole DOT graph.
func graphAttribute(key, value string) func(*description) {
	return func(d *description) {
		d.Attributes[key] = value
	}
}

func generateDOT[K comparable, T any](gra graph.Graph[K, T], options ...func(*description)) (description, error) {
	desc := description{
		GraphType:    "graph",
		Attributes:   make(map[string]string),
		EdgeOperator: "--",
		Statements:   make([]statement, 0),
	}

	for _, option := range options {
		option(&desc)
	}

	if gra.Traits().IsDirected {
		desc.GraphType = "digraph"
		desc.EdgeOperator = "->"
	}

	adjacencyMap, err := gra.AdjacencyMap()
	if err != nil {
		return desc, errors.Wrap(err, "unable to get adjacency map")
	}

	// map iteration order is random, sort to keep the output stable
	vertices := make([]K, 0, len(adjacencyMap))
	for vertex := range adjacencyMap {
		vertices = append(vertices, vertex)
	}
	sort.Slice(vertices, func(i, j int) bool {
		return fmt.Sprint(vertices[i]) < fmt.Sprint(vertices[j])
	})

	for _, vertex := range vertices {
		_, sourceProperties, err := gra.VertexWithProperties(vertex)
		if err != nil {
			return desc, errors.Wrap(err, "unable to get vertex properties")
		}

		htmlAttributes := make(map[string]string)
		sourceAttributes := make(map[string]string, len(sourceProperties.Attributes))
		for k, v := range sourceProperties.Attributes {
			sourceAttributes[k] = v
		}

		if xlabel, ok := sourceAttributes["xlabel"]; ok {
			htmlAttributes["label"] = fmt.Sprintf(`<%+v <BR /> <FONT POINT-SIZE="12">%s</FONT>>`, vertex, xlabel)

			delete(sourceAttributes, "xlabel")
		}

		desc.Statements = append(desc.Statements, statement{
			Source:           vertex,
			SourceWeight:     sourceProperties.Weight,
			SourceAttributes: sourceAttributes,
			HTMLAttributes:   htmlAttributes,
		})

		adjacencies := adjacencyMap[vertex]
		targets := make([]K, 0, len(adjacencies))
		for target := range adjacencies {
			targets = append(targets, target)
		}
		sort.Slice(targets, func(i, j int) bool {
			return fmt.Sprint(targets[i]) < fmt.Sprint(targets[j])
		})

		for _, target := range targets {
			edge := adjacencies[target]
			desc.Statements = append(desc.Statements, statement{
				Source:         vertex,
				Target:         target,
				EdgeWeight:     edge.Properties.Weight,
				EdgeAttributes: edge.Properties.Attributes,
			})
		}
	}

	return desc, nil
}

func renderDOT(wrt io.Writer, desc description) error {
	tpl, err := template.New("dotTemplate").Parse(dotTemplate)
	if err != nil {
		return errors.Wrap(err, "failed to parse template")
	}

	err = tpl.Execute(wrt, desc)
	if err != nil {
		return errors.Wrap(err, "unable to execute template")
	}

	return nil
}

var _ Drawer = (*DOTDrawer)(nil)
