package handlers

import "github.com/gin-gonic/gin"

// Register mounts every relation and messaging route on r. sendLimit guards
// the two endpoints that create content for another user.
func Register(r gin.IRoutes, sendLimit gin.HandlerFunc, friends *FriendHandler, blacklist *BlacklistHandler, messages *MessageHandler) {
	r.POST("/friends/request", sendLimit, friends.SendRequest)
	r.GET("/friends/requests/incoming", friends.ListIncoming)
	r.POST("/friends/requests/:id/accept", friends.AcceptRequest)
	r.POST("/friends/requests/:id/reject", friends.RejectRequest)
	r.GET("/friends", friends.ListFriends)
	r.DELETE("/friends/:friend_id", friends.DeleteFriend)

	r.GET("/blacklist", blacklist.List)
	r.POST("/blacklist", blacklist.Block)
	r.DELETE("/blacklist/:user_id", blacklist.Unblock)

	r.GET("/messages/conversations", messages.ListConversations)
	r.GET("/messages/conversations/:id/messages", messages.ListMessages)
	r.POST("/messages/conversations/:id/read", messages.MarkRead)
	r.POST("/messages/send", sendLimit, messages.SendMessage)
	r.GET("/messages/unread-count", messages.UnreadCount)
	r.GET("/messages/updates", messages.Updates)
}
