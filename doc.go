/*
Package stage provides the common plumbing for staging embedded HTTP
servers inside a test process.

The root package holds the pieces shared by every server engine and
client adapter: lifecycle hooks, and the viper-backed configuration
unmarshaling used to bootstrap server configuration from external
sources.

The interesting entry points live in the subpackages:

  - stagehttp stages servers backed by gorilla/mux
  - stagegin stages servers backed by gin
  - stageclient is the fluent HTTP client abstraction bound to a staged server
  - stagetest wires servers and clients into go test lifecycles
  - stagefx binds staged servers to an fx.App lifecycle
*/
package stage
