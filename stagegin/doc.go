/*
Package stagegin stages embedded HTTP servers backed by gin.

It is a drop-in alternative to the gorilla/mux engine in stagehttp:
both consume the same stagehttp.Config and satisfy stagehttp.Server, so
tests can swap engines without touching their lifecycle code.  Choose
this engine when the application under test is itself gin-based and the
test wants to mount real gin handlers.
*/
package stagegin
