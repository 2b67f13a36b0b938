// Package relay mediates chat turns between the session store and the
// upstream text-generation service.
//
// Invariants:
// - Model names are checked against the allow-list before any side effect.
// - The full transcript is sent upstream on every turn, no windowing.
// - A transcript is saved only after a non-empty reply is obtained; a
//   failed turn leaves the stored transcript unchanged.
//
// Usage:
//
//	svc, _ := relay.NewService(relay.Config{
//		Store:           store,
//		Generator:       generator,
//		DefaultModel:    "liteLLM",
//		SupportedModels: []string{"liteLLM"},
//		MaxTokens:       150,
//		Temperature:     0.7,
//	})
//	reply, _ := svc.Chat(relay.ChatParams{SessionID: "s1", Message: "hi"})
//	_ = reply
package relay
