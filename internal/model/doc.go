// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the entities and request payloads exchanged with
// the Personal Tutor backend.
//
// # Key Types
//
//   - Tutor: An AI assistant profile (wraps an Assistant)
//   - Module: A tutor paired with a topic and its own conversation thread
//   - Message: A single chat message with role, content blocks and time
//   - CreditTransaction: One entry in the credit ledger
//   - CreditSummary: Spend per transaction type
//   - UserInfo: Display name, email and credit balance
//   - Timestamp: Unix-seconds time used for every created_at field
//
// Every list entity implements Dated so tables can order them newest first.
//
// # Usage
//
//	var tutors []model.Tutor
//	_ = json.Unmarshal(body, &tutors)
//	fmt.Println(tutors[0].Name(), tutors[0].CreatedAt().Format(model.DateLayout))
package model
