package model

// Movie describes a film that shows are scheduled for.  Movies are
// reference data in this service: they are created elsewhere and only
// read here to give bookings their context.
//
// Fields:
//  ID          – primary key identifier.
//  Title       – display title of the movie.
//  Genre       – genre label (e.g. "Action").
//  DurationMin – running time in minutes.
type Movie struct {
	ID          uint64 // movies.id
	Title       string // movies.title
	Genre       string // movies.genre
	DurationMin uint32 // movies.duration_min
}
