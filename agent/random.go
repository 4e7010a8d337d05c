package agent

import (
	"context"

	"golang.org/x/exp/rand"

	"monopoly/protocol"
)

// Random picks uniformly among the legal actions and samples arguments inside
// the declared bounds. Everything derives from the seed, so a reseeded agent
// makes the same choices in the same order.
type Random struct {
	name string
	rng  *rand.Rand
}

func NewRandom(name string, seed uint64) *Random {
	return &Random{name: name, rng: rand.New(rand.NewSource(seed))}
}

func (a *Random) Name() string { return a.name }

func (a *Random) Decide(_ context.Context, req protocol.DecisionRequest) (protocol.Action, error) {
	menu := req.Point.LegalActions
	chosen := menu[a.rng.Intn(len(menu))]
	args := make(map[string]any)
	for _, f := range chosen.Args.Fields {
		if f.Required {
			args[f.Name] = a.sample(f)
		}
	}
	if len(args) == 0 {
		args = nil
	}
	return protocol.Action{
		SchemaVersion: protocol.SchemaVersion,
		DecisionID:    req.Point.DecisionID,
		Name:          chosen.Name,
		Args:          args,
	}, nil
}

func (a *Random) sample(f protocol.Field) any {
	switch f.Type {
	case protocol.FieldInt:
		if len(f.IntEnum) > 0 {
			return f.IntEnum[a.rng.Intn(len(f.IntEnum))]
		}
		lo, hi := 0, 0
		if f.Min != nil {
			lo = *f.Min
		}
		if f.Max != nil {
			hi = *f.Max
		}
		if hi < lo {
			hi = lo
		}
		return lo + a.rng.Intn(hi-lo+1)
	case protocol.FieldString:
		if len(f.Enum) > 0 {
			return f.Enum[a.rng.Intn(len(f.Enum))]
		}
		return ""
	case protocol.FieldBool:
		return a.rng.Intn(2) == 1
	case protocol.FieldArray:
		lo, hi := 0, 0
		if f.Min != nil {
			lo = *f.Min
		}
		if f.Max != nil {
			hi = *f.Max
		}
		if hi < lo {
			hi = lo
		}
		n := lo + a.rng.Intn(hi-lo+1)
		items := make([]any, 0, n)
		for i := 0; i < n && f.Elem != nil; i++ {
			items = append(items, a.sample(*f.Elem))
		}
		return items
	case protocol.FieldObject:
		obj := make(map[string]any)
		for _, sub := range f.Fields {
			if sub.Required {
				obj[sub.Name] = a.sample(sub)
			}
		}
		return obj
	}
	return nil
}
