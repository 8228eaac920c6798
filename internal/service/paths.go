package service

import "github.com/IDON3O/TeamLobby-sub000/internal/treestore"

// Tree layout. Rooms, users, and the global library are independent
// top-level documents; no operation ever transacts across two subtrees.
const (
	roomsRoot   = "rooms"
	usersRoot   = "users"
	libraryRoot = "library"

	visitedField = "visitedRooms"
)

func roomPath(code string) string {
	return treestore.Join(roomsRoot, code)
}

func membersPath(code string) string {
	return treestore.Join(roomsRoot, code, "members")
}

func queuePath(code string) string {
	return treestore.Join(roomsRoot, code, "gameQueue")
}

func chatPath(code string) string {
	return treestore.Join(roomsRoot, code, "chatHistory")
}

func userPath(userID string) string {
	return treestore.Join(usersRoot, userID)
}

func visitedPath(userID string) string {
	return treestore.Join(usersRoot, userID, visitedField)
}

func visitPath(userID, code string) string {
	return treestore.Join(usersRoot, userID, visitedField, code)
}

func libraryPath(gameID string) string {
	return treestore.Join(libraryRoot, gameID)
}
