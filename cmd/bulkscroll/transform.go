package main

import (
	"github.com/rezkam/bulkscroll/internal/domain"
	"github.com/rezkam/bulkscroll/internal/engine"
)

// newTransformFactory builds the engine.DocumentTransform for each accepted
// run's operation tag. No deployment of bulkscroll ships a user-supplied
// script hook yet (spec §4.4's ScriptHook is an extension point, not a
// wire-level field), so every transform here runs without one.
func newTransformFactory() func(opType, destinationIndex string) (engine.DocumentTransform, error) {
	return func(opType, destinationIndex string) (engine.DocumentTransform, error) {
		switch opType {
		case "reindex":
			return &engine.ReindexTransform{DestinationIndex: destinationIndex}, nil
		case "update_by_query":
			return &engine.UpdateByQueryTransform{}, nil
		case "delete_by_query":
			return &engine.DeleteByQueryTransform{}, nil
		default:
			return nil, domain.ErrUnknownOpType
		}
	}
}
