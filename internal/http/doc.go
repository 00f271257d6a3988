// Package http exposes the dispatch services over a JSON REST interface.
//
// The router groups routes in three tiers:
//   - public: GET /healthz, GET /metrics, POST /login
//   - authenticated: event scheduling and lifecycle, availability queries,
//     assignments, fleet catalog reads, session refresh and revocation
//   - administrator gated inside the services: fleet catalog mutations,
//     event deletion, field trip approval, operator creation
//
// Handlers decode requests, call the application services, and translate
// service errors to status codes through a shared responder. Conflict
// results return 409 with the blocking event IDs in the body so dispatchers
// can see exactly which bookings collide. Request/response DTOs live
// alongside their respective handlers.
package http
