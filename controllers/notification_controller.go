package controllers

import (
	"net/http"

	"socialnet_server/services"
	"socialnet_server/utils"

	"github.com/gorilla/mux"
)

const defaultNotificationsLimit = 20

type NotificationController struct {
	NotificationService *services.NotificationService
}

func NewNotificationController(notificationService *services.NotificationService) *NotificationController {
	return &NotificationController{NotificationService: notificationService}
}

// CreateNotification records a system notification for any user (admin only)
func (c *NotificationController) CreateNotification(w http.ResponseWriter, r *http.Request) {
	var input services.CreateNotificationInput
	if err := utils.DecodeJSON(r, &input); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	notification, err := c.NotificationService.Create(ctx, input)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusCreated, map[string]interface{}{
		"message":      "Notification created successfully",
		"notification": notification,
	})
}

func (c *NotificationController) GetNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	page, limit := pagination(r, defaultNotificationsLimit)

	ctx, cancel := requestContext(r)
	defer cancel()

	result, err := c.NotificationService.List(ctx, userID, r.URL.Query().Get("type"), page, limit)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, result)
}

func (c *NotificationController) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	count, err := c.NotificationService.UnreadCount(ctx, userID)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]int{"unreadCount": count})
}

func (c *NotificationController) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	notification, err := c.NotificationService.MarkRead(ctx, userID, mux.Vars(r)["notificationId"])
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]interface{}{
		"message":      "Notification marked as read",
		"notification": notification,
	})
}

func (c *NotificationController) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	if err := c.NotificationService.Delete(ctx, userID, mux.Vars(r)["notificationId"]); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"message": "Notification deleted successfully"})
}

func (c *NotificationController) DeleteAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	n, err := c.NotificationService.DeleteAll(ctx, userID)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]interface{}{
		"message":      "All notifications deleted successfully",
		"deletedCount": n,
	})
}
