package utils

//BallTrackID is the key the ball track is stored under in every frame of ball tracks
const BallTrackID = 1

//Team1 and Team2 are the only team ids the team classifier emits
const Team1 = 1
const Team2 = 2

//Sentinel is the value written on the wire for "no possession", "no shot", "no pass" etc.
const Sentinel = -1

//EventsFileName is the name of the exported events file inside a session directory
const EventsFileName = "events_data.json"

//PossessionStubName prefixes the stub name the pipeline caches ball possession under
const PossessionStubName = "ball_acquisition"

//StubKeyLength is how many hex digits of the input fingerprint are appended to a stub name
const StubKeyLength = 16

//DribbleStartWindow is the number of ball samples the dribble start pattern is matched against (2 stable + 2 descending)
const DribbleStartWindow = 4

//MinHoldHistoryLength is the minimum number of samples a hold is decided on, a single sample is always "stationary"
const MinHoldHistoryLength = 2
