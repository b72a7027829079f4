// Package http provides HTTP handlers and middleware for the roster API.
//
// The router exposes the following endpoints, mounted under /api by the
// server binary:
//   - GET /employees, POST /employees, GET|PUT|DELETE /employees/{id}: the
//     employee directory exchanging the camelCase `employeeDTO` payload
//     defined in employee_handler.go. Duplicate emails answer 409.
//   - GET /users, POST /users, GET|PUT|DELETE /users/{id}, GET /users/check:
//     manager accounts. Passwords are accepted on write and never returned.
//   - POST /shifts/range and DELETE /shifts/range: body {"startDate","endDate"}
//     in DD/MM/YY. POST clears the range then materializes its slots; DELETE
//     only clears assignments.
//   - POST /shifts/assign: an array of [position, firstName, lastName,
//     shiftType, date] tuples or equivalent objects. The response lists
//     persisted count, skipped tuples by index and reason, and whether the
//     request deadline cut the batch short.
//   - POST /shifts/save: {"startDate","endDate","assignments"} replaces the
//     assignments of the range in one call.
//   - GET /shifts?startDate&endDate: joined assignment rows.
//   - GET /shifts/week?weekStart&names: the projected week grid.
//   - GET /shifts/export?weekStart&format=pdf|xlsx|html&names=full|initial:
//     the week grid as a download.
//   - GET /healthz: liveness including a database ping.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
