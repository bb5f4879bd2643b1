package auth

// ScopeWorkoutsReset allows wiping every logged workout.
const ScopeWorkoutsReset = "workouts:reset"
