// Package tenant maps a homepage slug to the union that owns it.
//
// A Resolver consults a process-wide Cache first and falls back to the union
// table on a miss. Successful lookups are cached for a TTL; misses are never
// cached, so a union provisioned after a failed lookup becomes reachable on
// the next request. Store failures are logged and reported as "not found".
//
// Exactly one Cache and one Resolver exist per process. They are built in
// cmd/server and passed by reference to the gateway and every handler that
// re-resolves a slug.
package tenant
