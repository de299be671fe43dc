// Package harness runs zone scenarios: scripted sequences of zone
// operations checked against expected displays, emptiness and sample
// points.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: reset_and_free
//	description: "What this scenario checks"
//	specs:                   # optional CUE spec files
//	  - door.cue
//	clocks: [x, y]           # optional when start names a spec zone
//	start: universe          # universe | zero | <spec zone name>
//	steps:
//	  - op: constrain
//	    constraints: ["x <= 3"]
//	    expect: {empty: false, display: "(x<=3)"}
//	  - op: reset
//	    clock: x
//	    value: 5
//	    expect:
//	      includes: [{x: 5, y: 0}]
//	assertions:
//	  - type: final_display
//	    display: "(x==5)"
//	  - type: visited_count
//	    count: 3
//
// # Operations
//
//   - constrain: intersect with the given constraints
//   - up: let time elapse
//   - free: drop every constraint on a clock
//   - reset: set a clock to a value
//   - intersect: intersect with a spec zone, or with constraints on the universe
//   - zero, universe: replace the zone
//
// # Assertion Types
//
//   - final_display: the final zone renders as the given string
//   - final_empty: the final zone is (or is not) empty
//   - equals_zone: the final zone equals a spec zone
//   - visited_count: the run produced exactly N distinct zones
//
// # Deterministic Testing
//
// Trace events are stamped by testutil.DeterministicClock, so a scenario
// always yields the same trace and golden files compare byte for byte.
// Runs are written to a store only when one is attached with WithStore.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/door.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
