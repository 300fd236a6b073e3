// Package mockanalysis produces the synthetic upload progress and analysis
// results the demo shows in place of a real sequencing pipeline.
//
// Nothing here inspects file contents. Progress, species calls and counts
// are drawn from a seeded random source so runs can be reproduced.
package mockanalysis
