package semantic

import (
	"github.com/dekarrin/zkcircuit/internal/scope"
	"github.com/dekarrin/zkcircuit/internal/types"
)

// checkFunctionBodies runs after every declaration in the unit is known,
// checking each queued function/method body against its own signature.
func (a *Analyzer) checkFunctionBodies() {
	for _, w := range a.pending {
		fnScope := a.arena.New(w.sc)

		if w.node.TakesSelf {
			selfID := a.arena.NextItemID()
			a.arena.Declare(fnScope, &scope.Item{
				ID: selfID, Name: "self", Kind: scope.ItemVariable,
				Type: w.self, Memory: scope.MemoryContractStorage,
			})
		}

		var paramItems []scope.Item
		for i, p := range w.node.Params {
			if i >= len(w.sig.Params) {
				break
			}
			item := scope.Item{
				ID: a.arena.NextItemID(), Name: p.Name, Kind: scope.ItemVariable,
				Type: w.sig.Params[i], Memory: scope.MemoryStack,
			}
			a.arena.Declare(fnScope, &item)
			paramItems = append(paramItems, item)
		}

		prevSelf := a.currentSelf
		a.currentSelf = w.self

		body := a.checkBlock(w.node.Body, fnScope)
		if body != nil && w.sig.ReturnType != nil && !w.sig.ReturnType.Equal(types.Unit{}) {
			if !body.Type().Equal(w.sig.ReturnType) {
				a.errorf(a.typeMismatch(w.node.Body.Location(), w.sig.ReturnType, body.Type()))
			}
		}

		a.currentSelf = prevSelf

		a.checkedFns = append(a.checkedFns, &CheckedFn{
			Name: w.node.Name, Qualifier: w.qualifier, Sig: w.sig,
			Params: paramItems, Body: body, ItemID: w.itemID,
		})
	}
}
