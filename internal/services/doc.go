// Package services implements the operations the application performs on
// the store.
//
// # Overview
//
// Each service owns one area (accounts, preferences, voices, emotion marks,
// marketplace) and runs every operation as a single coordinator
// transaction over the collections it touches. Repositories are obtained
// from a repomanager.RepositoryManager bound to that transaction, so a
// failure anywhere leaves no partial write behind.
//
// Errors are the sentinels from package common, wrapped with context:
// callers match them with errors.Is. Failed read-write transactions also
// match common.ErrTransactionAborted.
//
// Key Types
//
//   - AccountService: Register, Authenticate, UpdateProfile, Get.
//   - PreferenceService: Get, Upsert. DecodePatch parses client patches.
//   - VoiceService: Create, Get, ListByOwner, ListUnpublished, Remove,
//     OpenPayload, PayloadURL, Stats, AuditAssets.
//   - EmotionService: Add, ListByVoice, Remove.
//   - MarketplaceService: Publish, ListAll.
package services
