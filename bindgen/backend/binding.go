package backend

import "github.com/broady/idlbind/bindgen/decl"

// StepKind is the kind of one argument-binding step.
type StepKind int

const (
	// StepConvert converts argument Index.
	StepConvert StepKind = iota

	// StepCall performs the call with the arguments bound so far. A gated
	// call runs only when argc <= Argc and ends the binding.
	StepCall
)

// Step is one argument-binding step.
type Step struct {
	Kind StepKind

	// Arg and Index are set for StepConvert.
	Arg   *decl.FunctionArgument
	Index int

	// Args are the arguments passed by a StepCall.
	Args []*decl.FunctionArgument

	// Argc is the argument-count threshold of a gated StepCall and the
	// arity of the final call.
	Argc  int
	Gated bool
}

// Plan is the argument-binding sequence of one function.
//
// For r required and k optional parameters the plan converts the required
// parameters, then for each optional parameter i emits a call gated on
// argc <= r+i followed by its conversion, and ends with the maximal call.
// That is k+1 call sites with thresholds r, r+1, ..., r+k.
type Plan struct {
	Function *decl.FunctionDeclaration

	Required int
	Optional int

	// MaxArgc is the number of non-variadic parameters.
	MaxArgc int

	Variadic bool
	Steps    []Step
}

// CheckArity reports whether calls with fewer than Required arguments must
// be rejected before conversion.
func (p *Plan) CheckArity() bool {
	if p.Required == 0 {
		return false
	}
	args := p.Function.Args
	return len(args) == 0 || !args[0].Variadic
}

// ClampArgc reports whether argc must be clamped to MaxArgc so that extra
// arguments reach the maximal call.
func (p *Plan) ClampArgc() bool {
	return p.Optional > 0 && !p.Variadic
}

// Calls returns the call steps in order.
func (p *Plan) Calls() []Step {
	var out []Step
	for _, s := range p.Steps {
		if s.Kind == StepCall {
			out = append(out, s)
		}
	}
	return out
}

// PlanArguments builds the binding plan for fn.
func PlanArguments(fn *decl.FunctionDeclaration) *Plan {
	p := &Plan{Function: fn, Required: fn.RequiredCount()}

	var bound []*decl.FunctionArgument
	convert := func(i int, arg *decl.FunctionArgument) {
		p.Steps = append(p.Steps, Step{Kind: StepConvert, Arg: arg, Index: i})
		bound = append(bound, arg)
	}

	for i, arg := range fn.Args {
		switch {
		case arg.Variadic:
			p.Variadic = true
			convert(i, arg)
		case i < p.Required:
			p.MaxArgc++
			convert(i, arg)
		default:
			p.Steps = append(p.Steps, Step{
				Kind:  StepCall,
				Args:  append([]*decl.FunctionArgument(nil), bound...),
				Argc:  p.Required + p.Optional,
				Gated: true,
			})
			p.Optional++
			p.MaxArgc++
			convert(i, arg)
		}
	}

	p.Steps = append(p.Steps, Step{
		Kind: StepCall,
		Args: append([]*decl.FunctionArgument(nil), bound...),
		Argc: p.Required + p.Optional,
	})
	return p
}
