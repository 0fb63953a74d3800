/*
Package ports defines the driven ports (interfaces) of the ticket desk.

These interfaces decouple the conversation core from external implementations,
allowing the desk to work with various session backends, ticket storage
engines, and notification sinks.

# Key Interfaces

  - SessionStore: persists per-user conversation sessions.
  - TicketStorage: creates, lists, fetches and deletes tickets.
  - DistributedLocker: serializes access to one user's session across replicas.
  - Notifier: delivers operator notifications (new or deleted tickets).

The package also ships reusable contract suites (RunSessionStoreContract,
RunTicketStorageContract) that every adapter runs in its tests.
*/
package ports
